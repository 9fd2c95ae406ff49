package storage

import (
	"context"
	"errors"

	"github.com/atlas-digital/agency-engine/internal/models"
)

// ErrNotFound is returned when a row scoped by primary key does not exist
var ErrNotFound = errors.New("not found")

// Repository defines the interface for calculator configuration, lead and
// chat persistence
type Repository interface {
	// Project types
	ListProjectTypes(ctx context.Context) ([]models.ProjectType, error)
	CreateProjectType(ctx context.Context, pt *models.ProjectType) error
	UpdateProjectType(ctx context.Context, pt *models.ProjectType) error
	DeleteProjectType(ctx context.Context, id int64) error
	GetProjectType(ctx context.Context, id int64) (*models.ProjectType, error)
	// CountProjectTypeDependents counts feature categories and scope
	// modifiers still referencing the project type key
	CountProjectTypeDependents(ctx context.Context, key string) (int, error)
	ProjectTypeExists(ctx context.Context, key string) (bool, error)

	// Design levels
	ListDesignLevels(ctx context.Context) ([]models.DesignLevel, error)
	CreateDesignLevel(ctx context.Context, dl *models.DesignLevel) error
	UpdateDesignLevel(ctx context.Context, dl *models.DesignLevel) error
	DeleteDesignLevel(ctx context.Context, id int64) error

	// Feature categories
	ListFeatureCategories(ctx context.Context) ([]models.FeatureCategory, error)
	CreateFeatureCategory(ctx context.Context, fc *models.FeatureCategory) error
	UpdateFeatureCategory(ctx context.Context, fc *models.FeatureCategory) error
	DeleteFeatureCategory(ctx context.Context, id int64) error
	CountCategoryFeatures(ctx context.Context, categoryID int64) (int, error)

	// Features
	ListFeatures(ctx context.Context) ([]models.Feature, error)
	CreateFeature(ctx context.Context, f *models.Feature) error
	UpdateFeature(ctx context.Context, f *models.Feature) error
	DeleteFeature(ctx context.Context, id int64) error

	// Scope modifiers
	ListScopeModifiers(ctx context.Context) ([]models.ScopeModifier, error)
	CreateScopeModifier(ctx context.Context, sm *models.ScopeModifier) error
	UpdateScopeModifier(ctx context.Context, sm *models.ScopeModifier) error
	DeleteScopeModifier(ctx context.Context, id int64) error
	CountModifierOptions(ctx context.Context, modifierID int64) (int, error)

	// Scope modifier options
	ListScopeModifierOptions(ctx context.Context) ([]models.ScopeModifierOption, error)
	CreateScopeModifierOption(ctx context.Context, opt *models.ScopeModifierOption) error
	UpdateScopeModifierOption(ctx context.Context, opt *models.ScopeModifierOption) error
	DeleteScopeModifierOption(ctx context.Context, id int64) error

	// Submissions (append-only)
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	ListSubmissions(ctx context.Context, filters models.SubmissionFilters) ([]*models.Submission, error)

	// Chat
	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
