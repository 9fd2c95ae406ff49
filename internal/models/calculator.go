package models

// PriceRange is an ordered pair of price bounds (Min <= Max)
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid returns true if the range is ordered
func (p PriceRange) Valid() bool {
	return p.Min <= p.Max
}

// ProjectType represents a category of deliverable with its own base price range
type ProjectType struct {
	ID           int64   `json:"id"`
	Key          string  `json:"key"`
	BasePriceMin float64 `json:"base_price_min"`
	BasePriceMax float64 `json:"base_price_max"`
	IsMonthly    bool    `json:"is_monthly"`
	SkipDesign   bool    `json:"skip_design"`
	SortOrder    int     `json:"sort_order"`
}

// DesignLevel is a multiplier tier applied to the base price.
// Design levels are global, not scoped per project type.
type DesignLevel struct {
	ID         int64   `json:"id"`
	Key        string  `json:"key"`
	Multiplier float64 `json:"multiplier"`
	SortOrder  int     `json:"sort_order"`
}

// FeatureCategory groups features under a project type
type FeatureCategory struct {
	ID             int64  `json:"id"`
	ProjectTypeKey string `json:"project_type_key"`
	CategoryKey    string `json:"category_key"`
	SortOrder      int    `json:"sort_order"`
}

// Feature is an optional add-on with its own additive price range
type Feature struct {
	ID          int64   `json:"id"`
	CategoryID  int64   `json:"category_id"`
	Key         string  `json:"key"`
	PriceMin    float64 `json:"price_min"`
	PriceMax    float64 `json:"price_max"`
	Recommended bool    `json:"recommended"`
	SortOrder   int     `json:"sort_order"`
}

// ScopeModifier is a user-facing choice axis (e.g. number of languages)
// whose selected option applies a multiplier to the price bounds
type ScopeModifier struct {
	ID             int64  `json:"id"`
	ProjectTypeKey string `json:"project_type_key"`
	Key            string `json:"key"`
	SortOrder      int    `json:"sort_order"`
}

// ScopeModifierOption is one selectable value of a scope modifier
type ScopeModifierOption struct {
	ID              int64   `json:"id"`
	ScopeModifierID int64   `json:"scope_modifier_id"`
	Value           string  `json:"value"`
	Multiplier      float64 `json:"multiplier"`
	SortOrder       int     `json:"sort_order"`
}

// --- Composed configuration document ---

// FeatureEntry is a feature as it appears in the composed configuration
type FeatureEntry struct {
	Key         string     `json:"key"`
	Price       PriceRange `json:"price"`
	Recommended bool       `json:"recommended,omitempty"`
}

// CategoryEntry is an ordered feature group in the composed configuration.
// Categories with no features keep an empty (non-nil) Features list.
type CategoryEntry struct {
	CategoryKey string         `json:"categoryKey"`
	Features    []FeatureEntry `json:"features"`
}

// ScopeOptionEntry is one option of a scope modifier in the composed configuration
type ScopeOptionEntry struct {
	Value      string  `json:"value"`
	Multiplier float64 `json:"multiplier"`
}

// ScopeModifierEntry is an ordered scope modifier in the composed configuration
type ScopeModifierEntry struct {
	Key     string             `json:"key"`
	Options []ScopeOptionEntry `json:"options"`
}

// CalculatorConfig is the fully denormalized configuration document the
// calculator operates on. It is assembled from the six entity collections
// and treated as immutable once composed.
type CalculatorConfig struct {
	ProjectTypeKeys     []string                        `json:"projectTypeKeys"`
	MonthlyTypes        map[string]bool                 `json:"monthlyTypes"`
	SkipDesignTypes     map[string]bool                 `json:"skipDesignTypes"`
	BasePrices          map[string]PriceRange           `json:"basePrices"`
	DesignLevelKeys     []string                        `json:"designLevelKeys"`
	DesignMultipliers   map[string]float64              `json:"designMultipliers"`
	CategorizedFeatures map[string][]CategoryEntry      `json:"categorizedFeatures"`
	ScopeModifiers      map[string][]ScopeModifierEntry `json:"scopeModifiers"`
}

// Selection is a user's choice set against the configuration document
type Selection struct {
	ProjectTypeKey string            `json:"projectTypeKey"`
	DesignLevelKey string            `json:"designLevelKey,omitempty"`
	FeatureKeys    []string          `json:"featureKeys,omitempty"`
	ScopeChoices   map[string]string `json:"scopeChoices,omitempty"`
}

// Quote is the computed price range for a selection.
// Bounds are whole currency units; PriceMin <= PriceMax always holds.
type Quote struct {
	PriceMin  int64 `json:"price_min"`
	PriceMax  int64 `json:"price_max"`
	IsMonthly bool  `json:"is_monthly"`
}
