package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
design_levels:
  - key: template
    multiplier: 1.0
  - key: premium
    multiplier: 1.5

project_types:
  - key: landing
    base_price_min: 500
    base_price_max: 900
    categories:
      - key: content
        features:
          - key: copywriting
            price_min: 100
            price_max: 200
            recommended: true
    scope_modifiers:
      - key: languages
        options:
          - value: "1"
            multiplier: 1.0
          - value: "2"
            multiplier: 1.3
  - key: seo-retainer
    base_price_min: 400
    base_price_max: 800
    is_monthly: true
    skip_design: true
`)

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if len(catalog.DesignLevels) != 2 {
		t.Errorf("design levels = %d, want 2", len(catalog.DesignLevels))
	}
	if len(catalog.ProjectTypes) != 2 {
		t.Fatalf("project types = %d, want 2", len(catalog.ProjectTypes))
	}

	landing := catalog.ProjectTypes[0]
	if landing.Key != "landing" {
		t.Errorf("first project type = %q, want landing", landing.Key)
	}
	if len(landing.Categories) != 1 || len(landing.Categories[0].Features) != 1 {
		t.Errorf("landing categories not parsed: %+v", landing.Categories)
	}
	if !landing.Categories[0].Features[0].Recommended {
		t.Error("copywriting should be recommended")
	}
	if len(landing.ScopeModifiers) != 1 || len(landing.ScopeModifiers[0].Options) != 2 {
		t.Errorf("landing scope modifiers not parsed: %+v", landing.ScopeModifiers)
	}

	retainer := catalog.ProjectTypes[1]
	if !retainer.IsMonthly || !retainer.SkipDesign {
		t.Errorf("seo-retainer flags = monthly %v, skip design %v", retainer.IsMonthly, retainer.SkipDesign)
	}
}

func TestLoadCatalogRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty catalog",
			content: "design_levels: []\nproject_types: []\n",
		},
		{
			name: "inverted base price",
			content: `
project_types:
  - key: landing
    base_price_min: 900
    base_price_max: 500
`,
		},
		{
			name: "zero multiplier",
			content: `
design_levels:
  - key: premium
    multiplier: 0
project_types:
  - key: landing
    base_price_min: 500
    base_price_max: 900
`,
		},
		{
			name: "missing feature key",
			content: `
project_types:
  - key: landing
    base_price_min: 500
    base_price_max: 900
    categories:
      - key: content
        features:
          - price_min: 100
            price_max: 200
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalog(t, tt.content)
			if _, err := LoadCatalog(path); err == nil {
				t.Error("LoadCatalog() expected error, got nil")
			}
		})
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadCatalog() expected error for missing file")
	}
}
