package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atlas-digital/agency-engine/internal/cache"
	"github.com/atlas-digital/agency-engine/internal/calculator"
	"github.com/atlas-digital/agency-engine/internal/models"
	"github.com/atlas-digital/agency-engine/internal/storage"
)

var (
	// ErrValidation is returned when a mutation payload violates an
	// entity invariant (price ordering, positive multiplier, missing key).
	ErrValidation = errors.New("validation failed")

	// ErrHasChildren is returned when deleting an entity that still has
	// dependent rows. Deletes never cascade; callers must remove children
	// first.
	ErrHasChildren = errors.New("entity has dependent children")
)

// Service is the mutation layer over the calculator configuration.
// Every successful mutation performs exactly one primary-key-scoped write
// and invalidates the configuration cache tag before returning.
type Service struct {
	repo  storage.Repository
	cache cache.TagCache
}

// NewService creates an admin mutation service
func NewService(repo storage.Repository, tagCache cache.TagCache) *Service {
	return &Service{repo: repo, cache: tagCache}
}

// invalidateConfig drops the composed configuration document so the next
// read recomputes. Invalidation completes before the mutation returns;
// a failure is logged but does not undo the write.
func (s *Service) invalidateConfig(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, calculator.ConfigTag); err != nil {
		slog.Error("failed to invalidate configuration cache", "tag", calculator.ConfigTag, "error", err)
	}
}

// --- Project types ---

// CreateProjectType validates and inserts a project type, returning the
// written row
func (s *Service) CreateProjectType(ctx context.Context, pt models.ProjectType) (*models.ProjectType, error) {
	if err := validateProjectType(pt); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProjectType(ctx, &pt); err != nil {
		return nil, err
	}

	s.invalidateConfig(ctx)
	return &pt, nil
}

// UpdateProjectType validates and updates a project type
func (s *Service) UpdateProjectType(ctx context.Context, pt models.ProjectType) error {
	if err := validateProjectType(pt); err != nil {
		return err
	}

	if err := s.repo.UpdateProjectType(ctx, &pt); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

// DeleteProjectType deletes a project type. The delete is rejected while
// feature categories or scope modifiers still reference its key.
func (s *Service) DeleteProjectType(ctx context.Context, id int64) error {
	pt, err := s.repo.GetProjectType(ctx, id)
	if err != nil {
		return err
	}

	dependents, err := s.repo.CountProjectTypeDependents(ctx, pt.Key)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return fmt.Errorf("project type %q has %d dependent rows: %w", pt.Key, dependents, ErrHasChildren)
	}

	if err := s.repo.DeleteProjectType(ctx, id); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

func validateProjectType(pt models.ProjectType) error {
	if pt.Key == "" {
		return fmt.Errorf("project type key is required: %w", ErrValidation)
	}
	if pt.BasePriceMin > pt.BasePriceMax {
		return fmt.Errorf("base price min %v exceeds max %v: %w", pt.BasePriceMin, pt.BasePriceMax, ErrValidation)
	}
	return nil
}

// --- Design levels ---

// CreateDesignLevel validates and inserts a design level, returning the
// written row
func (s *Service) CreateDesignLevel(ctx context.Context, dl models.DesignLevel) (*models.DesignLevel, error) {
	if err := validateDesignLevel(dl); err != nil {
		return nil, err
	}

	if err := s.repo.CreateDesignLevel(ctx, &dl); err != nil {
		return nil, err
	}

	s.invalidateConfig(ctx)
	return &dl, nil
}

// UpdateDesignLevel validates and updates a design level
func (s *Service) UpdateDesignLevel(ctx context.Context, dl models.DesignLevel) error {
	if err := validateDesignLevel(dl); err != nil {
		return err
	}

	if err := s.repo.UpdateDesignLevel(ctx, &dl); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

// DeleteDesignLevel deletes a design level
func (s *Service) DeleteDesignLevel(ctx context.Context, id int64) error {
	if err := s.repo.DeleteDesignLevel(ctx, id); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

func validateDesignLevel(dl models.DesignLevel) error {
	if dl.Key == "" {
		return fmt.Errorf("design level key is required: %w", ErrValidation)
	}
	if dl.Multiplier <= 0 {
		return fmt.Errorf("design level multiplier must be positive, got %v: %w", dl.Multiplier, ErrValidation)
	}
	return nil
}

// --- Feature categories ---

// CreateFeatureCategory validates and inserts a feature category,
// returning the written row. The referenced project type must exist.
func (s *Service) CreateFeatureCategory(ctx context.Context, fc models.FeatureCategory) (*models.FeatureCategory, error) {
	if err := s.validateFeatureCategory(ctx, fc); err != nil {
		return nil, err
	}

	if err := s.repo.CreateFeatureCategory(ctx, &fc); err != nil {
		return nil, err
	}

	s.invalidateConfig(ctx)
	return &fc, nil
}

// UpdateFeatureCategory validates and updates a feature category
func (s *Service) UpdateFeatureCategory(ctx context.Context, fc models.FeatureCategory) error {
	if err := s.validateFeatureCategory(ctx, fc); err != nil {
		return err
	}

	if err := s.repo.UpdateFeatureCategory(ctx, &fc); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

// DeleteFeatureCategory deletes a feature category. The delete is
// rejected while the category still has features, so features are never
// orphaned.
func (s *Service) DeleteFeatureCategory(ctx context.Context, id int64) error {
	count, err := s.repo.CountCategoryFeatures(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("feature category %d has %d features: %w", id, count, ErrHasChildren)
	}

	if err := s.repo.DeleteFeatureCategory(ctx, id); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

func (s *Service) validateFeatureCategory(ctx context.Context, fc models.FeatureCategory) error {
	if fc.CategoryKey == "" {
		return fmt.Errorf("category key is required: %w", ErrValidation)
	}

	exists, err := s.repo.ProjectTypeExists(ctx, fc.ProjectTypeKey)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("project type %q does not exist: %w", fc.ProjectTypeKey, ErrValidation)
	}

	return nil
}

// --- Features ---

// CreateFeature validates and inserts a feature, returning the written row
func (s *Service) CreateFeature(ctx context.Context, f models.Feature) (*models.Feature, error) {
	if err := validateFeature(f); err != nil {
		return nil, err
	}

	if err := s.repo.CreateFeature(ctx, &f); err != nil {
		return nil, err
	}

	s.invalidateConfig(ctx)
	return &f, nil
}

// UpdateFeature validates and updates a feature
func (s *Service) UpdateFeature(ctx context.Context, f models.Feature) error {
	if err := validateFeature(f); err != nil {
		return err
	}

	if err := s.repo.UpdateFeature(ctx, &f); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

// DeleteFeature deletes a feature
func (s *Service) DeleteFeature(ctx context.Context, id int64) error {
	if err := s.repo.DeleteFeature(ctx, id); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

func validateFeature(f models.Feature) error {
	if f.Key == "" {
		return fmt.Errorf("feature key is required: %w", ErrValidation)
	}
	if f.PriceMin > f.PriceMax {
		return fmt.Errorf("feature price min %v exceeds max %v: %w", f.PriceMin, f.PriceMax, ErrValidation)
	}
	return nil
}

// --- Scope modifiers ---

// CreateScopeModifier validates and inserts a scope modifier, returning
// the written row. The referenced project type must exist.
func (s *Service) CreateScopeModifier(ctx context.Context, sm models.ScopeModifier) (*models.ScopeModifier, error) {
	if err := s.validateScopeModifier(ctx, sm); err != nil {
		return nil, err
	}

	if err := s.repo.CreateScopeModifier(ctx, &sm); err != nil {
		return nil, err
	}

	s.invalidateConfig(ctx)
	return &sm, nil
}

// UpdateScopeModifier validates and updates a scope modifier
func (s *Service) UpdateScopeModifier(ctx context.Context, sm models.ScopeModifier) error {
	if err := s.validateScopeModifier(ctx, sm); err != nil {
		return err
	}

	if err := s.repo.UpdateScopeModifier(ctx, &sm); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

// DeleteScopeModifier deletes a scope modifier. The delete is rejected
// while the modifier still has options.
func (s *Service) DeleteScopeModifier(ctx context.Context, id int64) error {
	count, err := s.repo.CountModifierOptions(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("scope modifier %d has %d options: %w", id, count, ErrHasChildren)
	}

	if err := s.repo.DeleteScopeModifier(ctx, id); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

func (s *Service) validateScopeModifier(ctx context.Context, sm models.ScopeModifier) error {
	if sm.Key == "" {
		return fmt.Errorf("scope modifier key is required: %w", ErrValidation)
	}

	exists, err := s.repo.ProjectTypeExists(ctx, sm.ProjectTypeKey)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("project type %q does not exist: %w", sm.ProjectTypeKey, ErrValidation)
	}

	return nil
}

// --- Scope modifier options ---

// CreateScopeModifierOption validates and inserts an option, returning
// the written row
func (s *Service) CreateScopeModifierOption(ctx context.Context, opt models.ScopeModifierOption) (*models.ScopeModifierOption, error) {
	if err := validateScopeModifierOption(opt); err != nil {
		return nil, err
	}

	if err := s.repo.CreateScopeModifierOption(ctx, &opt); err != nil {
		return nil, err
	}

	s.invalidateConfig(ctx)
	return &opt, nil
}

// UpdateScopeModifierOption validates and updates an option
func (s *Service) UpdateScopeModifierOption(ctx context.Context, opt models.ScopeModifierOption) error {
	if err := validateScopeModifierOption(opt); err != nil {
		return err
	}

	if err := s.repo.UpdateScopeModifierOption(ctx, &opt); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

// DeleteScopeModifierOption deletes an option
func (s *Service) DeleteScopeModifierOption(ctx context.Context, id int64) error {
	if err := s.repo.DeleteScopeModifierOption(ctx, id); err != nil {
		return err
	}

	s.invalidateConfig(ctx)
	return nil
}

func validateScopeModifierOption(opt models.ScopeModifierOption) error {
	if opt.Value == "" {
		return fmt.Errorf("option value is required: %w", ErrValidation)
	}
	if opt.Multiplier <= 0 {
		return fmt.Errorf("option multiplier must be positive, got %v: %w", opt.Multiplier, ErrValidation)
	}
	return nil
}
