package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atlas-digital/agency-engine/internal/cache"
	"github.com/atlas-digital/agency-engine/internal/models"
)

// ConfigTag is the cache tag under which the composed configuration
// document is stored. Admin mutations invalidate it.
const ConfigTag = "calculator:config"

// ConfigStore is the storage surface the loader needs
type ConfigStore interface {
	ListProjectTypes(ctx context.Context) ([]models.ProjectType, error)
	ListDesignLevels(ctx context.Context) ([]models.DesignLevel, error)
	ListFeatureCategories(ctx context.Context) ([]models.FeatureCategory, error)
	ListFeatures(ctx context.Context) ([]models.Feature, error)
	ListScopeModifiers(ctx context.Context) ([]models.ScopeModifier, error)
	ListScopeModifierOptions(ctx context.Context) ([]models.ScopeModifierOption, error)
}

// Service assembles and caches the calculator configuration document
type Service struct {
	store ConfigStore
	cache cache.TagCache
	ttl   time.Duration
}

// NewService creates a configuration loader backed by the given store
// and tag cache
func NewService(store ConfigStore, tagCache cache.TagCache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &Service{
		store: store,
		cache: tagCache,
		ttl:   ttl,
	}
}

// Config returns the composed configuration document, read through the
// tag cache. Repeated calls with no intervening mutation return
// structurally equal documents.
func (s *Service) Config(ctx context.Context) (*models.CalculatorConfig, error) {
	data, err := s.cache.GetOrCompute(ctx, ConfigTag, s.ttl, func(ctx context.Context) ([]byte, error) {
		cfg, err := s.compose(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cfg)
	})
	if err != nil {
		slog.Error("failed to load calculator configuration", "error", err)
		return nil, ErrConfigUnavailable
	}

	var cfg models.CalculatorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Error("failed to decode cached configuration", "error", err)
		return nil, ErrConfigUnavailable
	}

	return &cfg, nil
}

// compose fetches the six entity collections concurrently and assembles
// the denormalized document. All fetches must complete before composition
// starts; any failure aborts the whole composition.
func (s *Service) compose(ctx context.Context) (*models.CalculatorConfig, error) {
	var (
		projectTypes []models.ProjectType
		designLevels []models.DesignLevel
		categories   []models.FeatureCategory
		features     []models.Feature
		modifiers    []models.ScopeModifier
		options      []models.ScopeModifierOption
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projectTypes, err = s.store.ListProjectTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		designLevels, err = s.store.ListDesignLevels(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.store.ListFeatureCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		features, err = s.store.ListFeatures(gctx)
		return err
	})
	g.Go(func() (err error) {
		modifiers, err = s.store.ListScopeModifiers(gctx)
		return err
	})
	g.Go(func() (err error) {
		options, err = s.store.ListScopeModifierOptions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch configuration entities: %w", err)
	}

	cfg := &models.CalculatorConfig{
		ProjectTypeKeys:     make([]string, 0, len(projectTypes)),
		MonthlyTypes:        make(map[string]bool),
		SkipDesignTypes:     make(map[string]bool),
		BasePrices:          make(map[string]models.PriceRange, len(projectTypes)),
		DesignLevelKeys:     make([]string, 0, len(designLevels)),
		DesignMultipliers:   make(map[string]float64, len(designLevels)),
		CategorizedFeatures: make(map[string][]models.CategoryEntry, len(projectTypes)),
		ScopeModifiers:      make(map[string][]models.ScopeModifierEntry, len(projectTypes)),
	}

	for _, pt := range projectTypes {
		cfg.ProjectTypeKeys = append(cfg.ProjectTypeKeys, pt.Key)
		if pt.IsMonthly {
			cfg.MonthlyTypes[pt.Key] = true
		}
		if pt.SkipDesign {
			cfg.SkipDesignTypes[pt.Key] = true
		}
		cfg.BasePrices[pt.Key] = models.PriceRange{Min: pt.BasePriceMin, Max: pt.BasePriceMax}
		cfg.CategorizedFeatures[pt.Key] = make([]models.CategoryEntry, 0)
		cfg.ScopeModifiers[pt.Key] = make([]models.ScopeModifierEntry, 0)
	}

	for _, dl := range designLevels {
		cfg.DesignLevelKeys = append(cfg.DesignLevelKeys, dl.Key)
		cfg.DesignMultipliers[dl.Key] = dl.Multiplier
	}

	// Grouping indexes built before the composition pass. The collections
	// arrive ordered by (sort_order, id), so grouping preserves order.
	featuresByCategory := make(map[int64][]models.FeatureEntry)
	for _, f := range features {
		featuresByCategory[f.CategoryID] = append(featuresByCategory[f.CategoryID], models.FeatureEntry{
			Key:         f.Key,
			Price:       models.PriceRange{Min: f.PriceMin, Max: f.PriceMax},
			Recommended: f.Recommended,
		})
	}

	optionsByModifier := make(map[int64][]models.ScopeOptionEntry)
	for _, opt := range options {
		optionsByModifier[opt.ScopeModifierID] = append(optionsByModifier[opt.ScopeModifierID], models.ScopeOptionEntry{
			Value:      opt.Value,
			Multiplier: opt.Multiplier,
		})
	}

	// Categories and modifiers with zero children keep an empty list
	for _, fc := range categories {
		if _, ok := cfg.CategorizedFeatures[fc.ProjectTypeKey]; !ok {
			// Dangling reference; the mutation layer enforces integrity,
			// but a stale row must not break composition.
			continue
		}
		feats := featuresByCategory[fc.ID]
		if feats == nil {
			feats = make([]models.FeatureEntry, 0)
		}
		cfg.CategorizedFeatures[fc.ProjectTypeKey] = append(cfg.CategorizedFeatures[fc.ProjectTypeKey], models.CategoryEntry{
			CategoryKey: fc.CategoryKey,
			Features:    feats,
		})
	}

	for _, sm := range modifiers {
		if _, ok := cfg.ScopeModifiers[sm.ProjectTypeKey]; !ok {
			continue
		}
		opts := optionsByModifier[sm.ID]
		if opts == nil {
			opts = make([]models.ScopeOptionEntry, 0)
		}
		cfg.ScopeModifiers[sm.ProjectTypeKey] = append(cfg.ScopeModifiers[sm.ProjectTypeKey], models.ScopeModifierEntry{
			Key:     sm.Key,
			Options: opts,
		})
	}

	return cfg, nil
}
