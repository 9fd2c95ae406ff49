package models

import (
	"time"
)

// SubmissionSource identifies which lead flow produced a submission
type SubmissionSource string

const (
	SourceCalculator SubmissionSource = "calculator"
	SourceContact    SubmissionSource = "contact"
)

// Submission is an append-only lead record. Rows are never updated or
// deleted once created.
type Submission struct {
	ID        int64            `json:"id"`
	Reference string           `json:"reference"`
	Source    SubmissionSource `json:"source"`
	Name      string           `json:"name"`
	Email     string           `json:"email,omitempty"`
	Phone     string           `json:"phone,omitempty"`
	Message   string           `json:"message,omitempty"`

	// Calculator-only fields. Features, scope modifiers and display labels
	// are stored as opaque serialized text.
	ProjectTypeKey string  `json:"project_type_key,omitempty"`
	DesignLevelKey string  `json:"design_level_key,omitempty"`
	Features       string  `json:"features,omitempty"`
	ScopeModifiers string  `json:"scope_modifiers,omitempty"`
	Labels         string  `json:"labels,omitempty"`
	AdBudget       string  `json:"ad_budget,omitempty"`
	PriceMin       int64   `json:"price_min,omitempty"`
	PriceMax       int64   `json:"price_max,omitempty"`
	IsMonthly      bool    `json:"is_monthly,omitempty"`

	// Contact-only fields
	Solutions    []string `json:"solutions,omitempty"`
	ServiceTypes []string `json:"service_types,omitempty"`
	Budget       string   `json:"budget,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SubmissionFilters narrows admin submission listings
type SubmissionFilters struct {
	Source SubmissionSource
	Limit  int
	Offset int
}
