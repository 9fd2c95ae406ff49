package calculator

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/atlas-digital/agency-engine/internal/cache"
	"github.com/atlas-digital/agency-engine/internal/models"
)

type fakeStore struct {
	projectTypes []models.ProjectType
	designLevels []models.DesignLevel
	categories   []models.FeatureCategory
	features     []models.Feature
	modifiers    []models.ScopeModifier
	options      []models.ScopeModifierOption

	failFeatures bool
}

func (f *fakeStore) ListProjectTypes(ctx context.Context) ([]models.ProjectType, error) {
	return f.projectTypes, nil
}

func (f *fakeStore) ListDesignLevels(ctx context.Context) ([]models.DesignLevel, error) {
	return f.designLevels, nil
}

func (f *fakeStore) ListFeatureCategories(ctx context.Context) ([]models.FeatureCategory, error) {
	return f.categories, nil
}

func (f *fakeStore) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	if f.failFeatures {
		return nil, errors.New("connection refused")
	}
	return f.features, nil
}

func (f *fakeStore) ListScopeModifiers(ctx context.Context) ([]models.ScopeModifier, error) {
	return f.modifiers, nil
}

func (f *fakeStore) ListScopeModifierOptions(ctx context.Context) ([]models.ScopeModifierOption, error) {
	return f.options, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projectTypes: []models.ProjectType{
			{ID: 1, Key: "landing", BasePriceMin: 500, BasePriceMax: 800, SortOrder: 1},
			{ID: 2, Key: "seo-retainer", BasePriceMin: 300, BasePriceMax: 600, IsMonthly: true, SkipDesign: true, SortOrder: 2},
		},
		designLevels: []models.DesignLevel{
			{ID: 1, Key: "standard", Multiplier: 1.0, SortOrder: 1},
			{ID: 2, Key: "premium", Multiplier: 1.5, SortOrder: 2},
		},
		categories: []models.FeatureCategory{
			{ID: 10, ProjectTypeKey: "landing", CategoryKey: "marketing", SortOrder: 1},
			{ID: 11, ProjectTypeKey: "landing", CategoryKey: "integrations", SortOrder: 2},
		},
		features: []models.Feature{
			{ID: 100, CategoryID: 10, Key: "seo-audit", PriceMin: 100, PriceMax: 150, SortOrder: 1},
			{ID: 101, CategoryID: 10, Key: "copywriting", PriceMin: 200, PriceMax: 400, Recommended: true, SortOrder: 2},
		},
		modifiers: []models.ScopeModifier{
			{ID: 20, ProjectTypeKey: "landing", Key: "languages", SortOrder: 1},
			{ID: 21, ProjectTypeKey: "landing", Key: "urgency", SortOrder: 2},
		},
		options: []models.ScopeModifierOption{
			{ID: 200, ScopeModifierID: 20, Value: "1", Multiplier: 1.0, SortOrder: 1},
			{ID: 201, ScopeModifierID: 20, Value: "2", Multiplier: 1.3, SortOrder: 2},
		},
	}
}

func TestConfig_Composition(t *testing.T) {
	svc := NewService(newFakeStore(), cache.NewMemoryCache(), time.Minute)

	cfg, err := svc.Config(context.Background())
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}

	wantKeys := []string{"landing", "seo-retainer"}
	if !reflect.DeepEqual(cfg.ProjectTypeKeys, wantKeys) {
		t.Errorf("ProjectTypeKeys = %v, want %v", cfg.ProjectTypeKeys, wantKeys)
	}

	if !cfg.MonthlyTypes["seo-retainer"] || cfg.MonthlyTypes["landing"] {
		t.Errorf("MonthlyTypes = %v", cfg.MonthlyTypes)
	}
	if !cfg.SkipDesignTypes["seo-retainer"] {
		t.Errorf("SkipDesignTypes = %v", cfg.SkipDesignTypes)
	}

	if got := cfg.BasePrices["landing"]; got != (models.PriceRange{Min: 500, Max: 800}) {
		t.Errorf("BasePrices[landing] = %+v", got)
	}

	if !reflect.DeepEqual(cfg.DesignLevelKeys, []string{"standard", "premium"}) {
		t.Errorf("DesignLevelKeys = %v", cfg.DesignLevelKeys)
	}
	if cfg.DesignMultipliers["premium"] != 1.5 {
		t.Errorf("DesignMultipliers[premium] = %v", cfg.DesignMultipliers["premium"])
	}

	landing := cfg.CategorizedFeatures["landing"]
	if len(landing) != 2 {
		t.Fatalf("expected 2 categories for landing, got %d", len(landing))
	}
	if landing[0].CategoryKey != "marketing" || len(landing[0].Features) != 2 {
		t.Errorf("unexpected first category: %+v", landing[0])
	}
	if landing[0].Features[0].Key != "seo-audit" {
		t.Errorf("feature order wrong: %+v", landing[0].Features)
	}

	// A category with no features keeps an empty, non-nil list
	if landing[1].CategoryKey != "integrations" {
		t.Fatalf("unexpected second category: %+v", landing[1])
	}
	if landing[1].Features == nil || len(landing[1].Features) != 0 {
		t.Errorf("empty category should have empty features list, got %v", landing[1].Features)
	}

	mods := cfg.ScopeModifiers["landing"]
	if len(mods) != 2 {
		t.Fatalf("expected 2 modifiers for landing, got %d", len(mods))
	}
	if mods[0].Key != "languages" || len(mods[0].Options) != 2 {
		t.Errorf("unexpected first modifier: %+v", mods[0])
	}
	if mods[1].Options == nil || len(mods[1].Options) != 0 {
		t.Errorf("modifier without options should have empty list, got %v", mods[1].Options)
	}

	// Project type with no categories or modifiers still appears
	if feats, ok := cfg.CategorizedFeatures["seo-retainer"]; !ok || len(feats) != 0 {
		t.Errorf("seo-retainer features = %v (present=%v)", feats, ok)
	}
}

func TestConfig_Idempotent(t *testing.T) {
	svc := NewService(newFakeStore(), cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	first, err := svc.Config(ctx)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	second, err := svc.Config(ctx)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Config calls without mutation should be structurally equal")
	}
}

func TestConfig_NoPartialDocumentOnFetchFailure(t *testing.T) {
	store := newFakeStore()
	store.failFeatures = true
	svc := NewService(store, cache.NewMemoryCache(), time.Minute)

	cfg, err := svc.Config(context.Background())
	if !errors.Is(err, ErrConfigUnavailable) {
		t.Fatalf("expected ErrConfigUnavailable, got %v", err)
	}
	if cfg != nil {
		t.Errorf("no partial configuration may be returned, got %+v", cfg)
	}
}

func TestConfig_InvalidationReflectsMutation(t *testing.T) {
	store := newFakeStore()
	tagCache := cache.NewMemoryCache()
	svc := NewService(store, tagCache, time.Hour)
	ctx := context.Background()

	before, err := svc.Config(ctx)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if before.BasePrices["landing"].Min != 500 {
		t.Fatalf("unexpected initial base price: %+v", before.BasePrices["landing"])
	}

	// Mutate the store; without invalidation the cached document wins
	store.projectTypes[0].BasePriceMin = 700
	stale, err := svc.Config(ctx)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if stale.BasePrices["landing"].Min != 500 {
		t.Errorf("expected cached value 500 before invalidation, got %v", stale.BasePrices["landing"].Min)
	}

	if err := tagCache.Invalidate(ctx, ConfigTag); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	fresh, err := svc.Config(ctx)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if fresh.BasePrices["landing"].Min != 700 {
		t.Errorf("expected fresh value 700 after invalidation, got %v", fresh.BasePrices["landing"].Min)
	}
}
