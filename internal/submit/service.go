package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlas-digital/agency-engine/internal/calculator"
	"github.com/atlas-digital/agency-engine/internal/models"
	"github.com/atlas-digital/agency-engine/internal/notify"
)

// ErrInvalidRequest is returned when a submission payload is missing
// required contact fields
var ErrInvalidRequest = errors.New("invalid submission request")

// genericFailure is the only error detail end users ever see for a
// persistence failure; specifics stay in server logs.
const genericFailure = "Failed to submit"

// SubmissionStore is the storage surface the pipeline needs
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
}

// ConfigProvider supplies the current configuration document for
// server-side quote recomputation
type ConfigProvider interface {
	Config(ctx context.Context) (*models.CalculatorConfig, error)
}

// Service validates and persists lead submissions and dispatches
// best-effort notifications
type Service struct {
	store    SubmissionStore
	config   ConfigProvider
	notifier notify.Notifier
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewService creates a submission pipeline
func NewService(store SubmissionStore, config ConfigProvider, notifier notify.Notifier) *Service {
	return &Service{
		store:    store,
		config:   config,
		notifier: notifier,
		now:      time.Now,
	}
}

// Result is the outcome reported to the caller. On failure Error carries
// a generic message only.
type Result struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CalculatorRequest is a lead from the pricing calculator. Labels carry
// client-side display names used in the notification text.
type CalculatorRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`

	Selection models.Selection  `json:"selection"`
	Labels    map[string]string `json:"labels"`
	AdBudget  string            `json:"adBudget"`

	// Client-side estimate, kept for mismatch logging only. The server
	// recomputes the authoritative quote from its own configuration.
	ClientPriceMin int64 `json:"priceMin"`
	ClientPriceMax int64 `json:"priceMax"`
}

// ContactRequest is a lead from the contact form
type ContactRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Message      string   `json:"message"`
	Solutions    []string `json:"solutions"`
	ServiceTypes []string `json:"serviceTypes"`
	Budget       string   `json:"budget"`
}

// SubmitCalculator persists a calculator lead and dispatches a
// notification. Notification failure never affects the result.
func (s *Service) SubmitCalculator(ctx context.Context, req CalculatorRequest) (Result, error) {
	if err := validateContact(req.Name, req.Email, req.Phone); err != nil {
		return Result{}, err
	}

	quote := s.recomputeQuote(ctx, req)

	featuresJSON, _ := json.Marshal(req.Selection.FeatureKeys)
	scopeJSON, _ := json.Marshal(req.Selection.ScopeChoices)
	labelsJSON, _ := json.Marshal(req.Labels)

	sub := &models.Submission{
		Reference:      uuid.NewString(),
		Source:         models.SourceCalculator,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Message:        req.Message,
		ProjectTypeKey: req.Selection.ProjectTypeKey,
		DesignLevelKey: req.Selection.DesignLevelKey,
		Features:       string(featuresJSON),
		ScopeModifiers: string(scopeJSON),
		Labels:         string(labelsJSON),
		AdBudget:       req.AdBudget,
		PriceMin:       quote.PriceMin,
		PriceMax:       quote.PriceMax,
		IsMonthly:      quote.IsMonthly,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		slog.Error("failed to persist calculator submission",
			"name", req.Name,
			"project_type", req.Selection.ProjectTypeKey,
			"error", err,
		)
		return Result{Success: false, Error: genericFailure}, nil
	}

	s.dispatch(formatCalculatorMessage(req, quote))

	return Result{Success: true, ID: sub.ID}, nil
}

// SubmitContact persists a contact-form lead and dispatches a
// notification
func (s *Service) SubmitContact(ctx context.Context, req ContactRequest) (Result, error) {
	if err := validateContact(req.Name, req.Email, req.Phone); err != nil {
		return Result{}, err
	}

	sub := &models.Submission{
		Reference:    uuid.NewString(),
		Source:       models.SourceContact,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		Solutions:    req.Solutions,
		ServiceTypes: req.ServiceTypes,
		Budget:       req.Budget,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		slog.Error("failed to persist contact submission", "name", req.Name, "error", err)
		return Result{Success: false, Error: genericFailure}, nil
	}

	s.dispatch(formatContactMessage(req))

	return Result{Success: true, ID: sub.ID}, nil
}

// recomputeQuote derives the authoritative price range from the current
// configuration. When the selection cannot be priced the client estimate
// is kept verbatim, so a misconfigured widget still records the lead.
func (s *Service) recomputeQuote(ctx context.Context, req CalculatorRequest) models.Quote {
	cfg, err := s.config.Config(ctx)
	if err != nil {
		slog.Warn("configuration unavailable for quote recomputation, keeping client estimate", "error", err)
		return models.Quote{PriceMin: req.ClientPriceMin, PriceMax: req.ClientPriceMax}
	}

	quote, err := calculator.ComputeQuote(cfg, req.Selection)
	if err != nil {
		slog.Warn("selection not priceable, keeping client estimate",
			"project_type", req.Selection.ProjectTypeKey,
			"error", err,
		)
		return models.Quote{PriceMin: req.ClientPriceMin, PriceMax: req.ClientPriceMax}
	}

	if req.ClientPriceMin != 0 || req.ClientPriceMax != 0 {
		if quote.PriceMin != req.ClientPriceMin || quote.PriceMax != req.ClientPriceMax {
			slog.Warn("client price estimate disagrees with server quote",
				"client_min", req.ClientPriceMin,
				"client_max", req.ClientPriceMax,
				"server_min", quote.PriceMin,
				"server_max", quote.PriceMax,
			)
		}
	}

	return quote
}

// dispatch sends the notification in the background with its own
// deadline, detached from the request context, so a slow channel never
// delays the caller's confirmation. Errors are logged and swallowed.
func (s *Service) dispatch(text string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, text); err != nil {
			slog.Error("failed to dispatch lead notification", "error", err)
		}
	}()
}

// Wait blocks until in-flight notification dispatches finish. Called on
// shutdown so pending lead alerts are not dropped.
func (s *Service) Wait() {
	s.wg.Wait()
}

func validateContact(name, email, phone string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidRequest)
	}
	if strings.TrimSpace(email) == "" && strings.TrimSpace(phone) == "" {
		return fmt.Errorf("email or phone is required: %w", ErrInvalidRequest)
	}
	return nil
}

// label resolves a display label for a key, falling back to the key itself
func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok && l != "" {
		return l
	}
	return key
}

func formatCalculatorMessage(req CalculatorRequest, quote models.Quote) string {
	var b strings.Builder

	b.WriteString("<b>New calculator lead</b>\n\n")
	fmt.Fprintf(&b, "Name: %s\n", notify.EscapeText(req.Name))
	if req.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", notify.EscapeText(req.Email))
	}
	if req.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", notify.EscapeText(req.Phone))
	}

	fmt.Fprintf(&b, "\nProject: %s\n", notify.EscapeText(label(req.Labels, req.Selection.ProjectTypeKey)))
	if req.Selection.DesignLevelKey != "" {
		fmt.Fprintf(&b, "Design: %s\n", notify.EscapeText(label(req.Labels, req.Selection.DesignLevelKey)))
	}

	if len(req.Selection.FeatureKeys) > 0 {
		names := make([]string, 0, len(req.Selection.FeatureKeys))
		for _, key := range req.Selection.FeatureKeys {
			names = append(names, notify.EscapeText(label(req.Labels, key)))
		}
		fmt.Fprintf(&b, "Features: %s\n", strings.Join(names, ", "))
	}

	for key, value := range req.Selection.ScopeChoices {
		fmt.Fprintf(&b, "%s: %s\n", notify.EscapeText(label(req.Labels, key)), notify.EscapeText(value))
	}

	if req.AdBudget != "" {
		fmt.Fprintf(&b, "Ad budget: %s\n", notify.EscapeText(req.AdBudget))
	}

	billing := "one-time"
	if quote.IsMonthly {
		billing = "monthly"
	}
	fmt.Fprintf(&b, "\nEstimate: %d - %d (%s)\n", quote.PriceMin, quote.PriceMax, billing)

	if req.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s\n", notify.EscapeText(req.Message))
	}

	return b.String()
}

func formatContactMessage(req ContactRequest) string {
	var b strings.Builder

	b.WriteString("<b>New contact request</b>\n\n")
	fmt.Fprintf(&b, "Name: %s\n", notify.EscapeText(req.Name))
	if req.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", notify.EscapeText(req.Email))
	}
	if req.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", notify.EscapeText(req.Phone))
	}

	if len(req.Solutions) > 0 {
		fmt.Fprintf(&b, "Solutions: %s\n", notify.EscapeText(strings.Join(req.Solutions, ", ")))
	}
	if len(req.ServiceTypes) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", notify.EscapeText(strings.Join(req.ServiceTypes, ", ")))
	}
	if req.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", notify.EscapeText(req.Budget))
	}

	if req.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s\n", notify.EscapeText(req.Message))
	}

	return b.String()
}
