package calculator

import (
	"fmt"
	"math"

	"github.com/atlas-digital/agency-engine/internal/models"
)

// ComputeQuote computes the price range and billing flag for a selection
// against a configuration document. It is pure and deterministic:
// identical inputs always produce identical output, which lets the server
// recompute and verify client-side estimates.
func ComputeQuote(cfg *models.CalculatorConfig, sel models.Selection) (models.Quote, error) {
	base, ok := cfg.BasePrices[sel.ProjectTypeKey]
	if !ok {
		return models.Quote{}, fmt.Errorf("unknown project type %q: %w", sel.ProjectTypeKey, ErrInvalidSelection)
	}

	min, max := base.Min, base.Max

	if !cfg.SkipDesignTypes[sel.ProjectTypeKey] {
		if sel.DesignLevelKey == "" {
			return models.Quote{}, fmt.Errorf("design level required for project type %q: %w", sel.ProjectTypeKey, ErrIncompleteSelection)
		}
		multiplier, ok := cfg.DesignMultipliers[sel.DesignLevelKey]
		if !ok {
			return models.Quote{}, fmt.Errorf("unknown design level %q: %w", sel.DesignLevelKey, ErrInvalidSelection)
		}
		min *= multiplier
		max *= multiplier
	}

	// Feature prices are additive and independent of the multipliers
	// below. Selected keys the project type does not offer are ignored.
	selected := make(map[string]bool, len(sel.FeatureKeys))
	for _, key := range sel.FeatureKeys {
		selected[key] = true
	}
	for _, category := range cfg.CategorizedFeatures[sel.ProjectTypeKey] {
		for _, feature := range category.Features {
			if selected[feature.Key] {
				min += feature.Price.Min
				max += feature.Price.Max
			}
		}
	}

	// An unspecified modifier defaults to multiplier 1.0; a supplied
	// choice must name a known option.
	for _, modifier := range cfg.ScopeModifiers[sel.ProjectTypeKey] {
		choice, ok := sel.ScopeChoices[modifier.Key]
		if !ok {
			continue
		}
		matched := false
		for _, option := range modifier.Options {
			if option.Value == choice {
				min *= option.Multiplier
				max *= option.Multiplier
				matched = true
				break
			}
		}
		if !matched {
			return models.Quote{}, fmt.Errorf("unknown option %q for scope modifier %q: %w", choice, modifier.Key, ErrInvalidSelection)
		}
	}

	quote := models.Quote{
		PriceMin:  int64(math.Round(min)),
		PriceMax:  int64(math.Round(max)),
		IsMonthly: cfg.MonthlyTypes[sel.ProjectTypeKey],
	}

	// Rounding must never invert the bounds
	if quote.PriceMax < quote.PriceMin {
		quote.PriceMax = quote.PriceMin
	}

	return quote, nil
}
