package calculator

import (
	"errors"
	"testing"

	"github.com/atlas-digital/agency-engine/internal/models"
)

func testConfig() *models.CalculatorConfig {
	return &models.CalculatorConfig{
		ProjectTypeKeys: []string{"landing", "ecommerce", "seo-retainer"},
		MonthlyTypes:    map[string]bool{"seo-retainer": true},
		SkipDesignTypes: map[string]bool{"seo-retainer": true},
		BasePrices: map[string]models.PriceRange{
			"landing":      {Min: 500, Max: 800},
			"ecommerce":    {Min: 2000, Max: 5000},
			"seo-retainer": {Min: 300, Max: 600},
		},
		DesignLevelKeys: []string{"standard", "premium"},
		DesignMultipliers: map[string]float64{
			"standard": 1.0,
			"premium":  1.5,
		},
		CategorizedFeatures: map[string][]models.CategoryEntry{
			"landing": {
				{
					CategoryKey: "marketing",
					Features: []models.FeatureEntry{
						{Key: "seo-audit", Price: models.PriceRange{Min: 100, Max: 150}},
						{Key: "copywriting", Price: models.PriceRange{Min: 200, Max: 400}, Recommended: true},
					},
				},
			},
			"ecommerce":    {},
			"seo-retainer": {},
		},
		ScopeModifiers: map[string][]models.ScopeModifierEntry{
			"landing": {
				{
					Key: "languages",
					Options: []models.ScopeOptionEntry{
						{Value: "1", Multiplier: 1.0},
						{Value: "2", Multiplier: 1.3},
					},
				},
			},
			"ecommerce":    {},
			"seo-retainer": {},
		},
	}
}

func TestComputeQuote_EndToEnd(t *testing.T) {
	// landing base (500,800), premium x1.5, seo-audit +(100,150)
	quote, err := ComputeQuote(testConfig(), models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "premium",
		FeatureKeys:    []string{"seo-audit"},
	})
	if err != nil {
		t.Fatalf("ComputeQuote failed: %v", err)
	}

	if quote.PriceMin != 850 {
		t.Errorf("PriceMin = %d, want 850", quote.PriceMin)
	}
	if quote.PriceMax != 1350 {
		t.Errorf("PriceMax = %d, want 1350", quote.PriceMax)
	}
	if quote.IsMonthly {
		t.Error("landing should not be monthly")
	}
}

func TestComputeQuote_MissingDesignLevel(t *testing.T) {
	_, err := ComputeQuote(testConfig(), models.Selection{ProjectTypeKey: "landing"})
	if !errors.Is(err, ErrIncompleteSelection) {
		t.Fatalf("expected ErrIncompleteSelection, got %v", err)
	}

	// Every valid design level must succeed
	for _, level := range []string{"standard", "premium"} {
		if _, err := ComputeQuote(testConfig(), models.Selection{
			ProjectTypeKey: "landing",
			DesignLevelKey: level,
		}); err != nil {
			t.Errorf("design level %q: unexpected error: %v", level, err)
		}
	}
}

func TestComputeQuote_SkipDesignType(t *testing.T) {
	quote, err := ComputeQuote(testConfig(), models.Selection{ProjectTypeKey: "seo-retainer"})
	if err != nil {
		t.Fatalf("ComputeQuote failed: %v", err)
	}

	if quote.PriceMin != 300 || quote.PriceMax != 600 {
		t.Errorf("got (%d,%d), want (300,600)", quote.PriceMin, quote.PriceMax)
	}
	if !quote.IsMonthly {
		t.Error("seo-retainer should be monthly")
	}
}

func TestComputeQuote_UnknownProjectType(t *testing.T) {
	_, err := ComputeQuote(testConfig(), models.Selection{ProjectTypeKey: "spaceship"})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestComputeQuote_UnknownDesignLevel(t *testing.T) {
	_, err := ComputeQuote(testConfig(), models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "platinum",
	})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestComputeQuote_ScopeModifierMultiplier(t *testing.T) {
	quote, err := ComputeQuote(testConfig(), models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "standard",
		ScopeChoices:   map[string]string{"languages": "2"},
	})
	if err != nil {
		t.Fatalf("ComputeQuote failed: %v", err)
	}

	// (500*1.3, 800*1.3) = (650, 1040)
	if quote.PriceMin != 650 || quote.PriceMax != 1040 {
		t.Errorf("got (%d,%d), want (650,1040)", quote.PriceMin, quote.PriceMax)
	}
}

func TestComputeQuote_UnspecifiedModifierDefaultsToNoAdjustment(t *testing.T) {
	with, err := ComputeQuote(testConfig(), models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "standard",
		ScopeChoices:   map[string]string{"languages": "1"},
	})
	if err != nil {
		t.Fatalf("ComputeQuote failed: %v", err)
	}

	without, err := ComputeQuote(testConfig(), models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "standard",
	})
	if err != nil {
		t.Fatalf("ComputeQuote failed: %v", err)
	}

	if with != without {
		t.Errorf("omitted modifier should equal multiplier 1.0: %+v vs %+v", with, without)
	}
}

func TestComputeQuote_UnknownScopeOption(t *testing.T) {
	_, err := ComputeQuote(testConfig(), models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "standard",
		ScopeChoices:   map[string]string{"languages": "99"},
	})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestComputeQuote_UnknownFeatureKeysIgnored(t *testing.T) {
	quote, err := ComputeQuote(testConfig(), models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "standard",
		FeatureKeys:    []string{"seo-audit", "does-not-exist"},
	})
	if err != nil {
		t.Fatalf("ComputeQuote failed: %v", err)
	}

	if quote.PriceMin != 600 || quote.PriceMax != 950 {
		t.Errorf("got (%d,%d), want (600,950)", quote.PriceMin, quote.PriceMax)
	}
}

func TestComputeQuote_BoundsNeverInvert(t *testing.T) {
	cfg := testConfig()
	selections := []models.Selection{
		{ProjectTypeKey: "landing", DesignLevelKey: "standard"},
		{ProjectTypeKey: "landing", DesignLevelKey: "premium", FeatureKeys: []string{"seo-audit", "copywriting"}},
		{ProjectTypeKey: "landing", DesignLevelKey: "premium", ScopeChoices: map[string]string{"languages": "2"}},
		{ProjectTypeKey: "ecommerce", DesignLevelKey: "premium"},
		{ProjectTypeKey: "seo-retainer"},
	}

	for _, sel := range selections {
		quote, err := ComputeQuote(cfg, sel)
		if err != nil {
			t.Fatalf("ComputeQuote(%+v) failed: %v", sel, err)
		}
		if quote.PriceMin > quote.PriceMax {
			t.Errorf("inverted bounds for %+v: (%d,%d)", sel, quote.PriceMin, quote.PriceMax)
		}
	}
}

func TestComputeQuote_Deterministic(t *testing.T) {
	sel := models.Selection{
		ProjectTypeKey: "landing",
		DesignLevelKey: "premium",
		FeatureKeys:    []string{"copywriting", "seo-audit"},
		ScopeChoices:   map[string]string{"languages": "2"},
	}

	first, err := ComputeQuote(testConfig(), sel)
	if err != nil {
		t.Fatalf("ComputeQuote failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := ComputeQuote(testConfig(), sel)
		if err != nil {
			t.Fatalf("ComputeQuote failed: %v", err)
		}
		if again != first {
			t.Fatalf("non-deterministic quote: %+v vs %+v", again, first)
		}
	}
}
