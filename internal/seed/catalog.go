package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the bootstrap pricing catalog loaded from YAML. It mirrors
// the calculator entity hierarchy so a fresh database can serve quotes
// immediately.
type Catalog struct {
	DesignLevels []DesignLevelSeed `yaml:"design_levels"`
	ProjectTypes []ProjectTypeSeed `yaml:"project_types"`
}

type DesignLevelSeed struct {
	Key        string  `yaml:"key"`
	Multiplier float64 `yaml:"multiplier"`
}

type ProjectTypeSeed struct {
	Key            string              `yaml:"key"`
	BasePriceMin   float64             `yaml:"base_price_min"`
	BasePriceMax   float64             `yaml:"base_price_max"`
	IsMonthly      bool                `yaml:"is_monthly"`
	SkipDesign     bool                `yaml:"skip_design"`
	Categories     []CategorySeed      `yaml:"categories"`
	ScopeModifiers []ScopeModifierSeed `yaml:"scope_modifiers"`
}

type CategorySeed struct {
	Key      string        `yaml:"key"`
	Features []FeatureSeed `yaml:"features"`
}

type FeatureSeed struct {
	Key         string  `yaml:"key"`
	PriceMin    float64 `yaml:"price_min"`
	PriceMax    float64 `yaml:"price_max"`
	Recommended bool    `yaml:"recommended"`
}

type ScopeModifierSeed struct {
	Key     string            `yaml:"key"`
	Options []ScopeOptionSeed `yaml:"options"`
}

type ScopeOptionSeed struct {
	Value      string  `yaml:"value"`
	Multiplier float64 `yaml:"multiplier"`
}

// LoadCatalog reads and validates a catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &catalog, nil
}

// Validate checks catalog invariants before any rows are written
func (c *Catalog) Validate() error {
	if len(c.ProjectTypes) == 0 {
		return fmt.Errorf("catalog has no project types")
	}

	for _, dl := range c.DesignLevels {
		if dl.Key == "" {
			return fmt.Errorf("design level key is required")
		}
		if dl.Multiplier <= 0 {
			return fmt.Errorf("design level %q: multiplier must be positive", dl.Key)
		}
	}

	for _, pt := range c.ProjectTypes {
		if pt.Key == "" {
			return fmt.Errorf("project type key is required")
		}
		if pt.BasePriceMin > pt.BasePriceMax {
			return fmt.Errorf("project type %q: base price bounds out of order", pt.Key)
		}
		for _, cat := range pt.Categories {
			if cat.Key == "" {
				return fmt.Errorf("project type %q: category key is required", pt.Key)
			}
			for _, f := range cat.Features {
				if f.Key == "" {
					return fmt.Errorf("category %q: feature key is required", cat.Key)
				}
				if f.PriceMin > f.PriceMax {
					return fmt.Errorf("feature %q: price bounds out of order", f.Key)
				}
			}
		}
		for _, sm := range pt.ScopeModifiers {
			if sm.Key == "" {
				return fmt.Errorf("project type %q: scope modifier key is required", pt.Key)
			}
			for _, opt := range sm.Options {
				if opt.Value == "" {
					return fmt.Errorf("scope modifier %q: option value is required", sm.Key)
				}
				if opt.Multiplier <= 0 {
					return fmt.Errorf("scope modifier %q: option %q multiplier must be positive", sm.Key, opt.Value)
				}
			}
		}
	}

	return nil
}
