package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-digital/agency-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Project types ---

// ListProjectTypes returns all project types in display order
func (r *PostgresRepository) ListProjectTypes(ctx context.Context) ([]models.ProjectType, error) {
	query := `
		SELECT id, key, base_price_min, base_price_max, is_monthly, skip_design, sort_order
		FROM project_types
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list project types: %w", err)
	}
	defer rows.Close()

	var types []models.ProjectType
	for rows.Next() {
		var pt models.ProjectType
		if err := rows.Scan(&pt.ID, &pt.Key, &pt.BasePriceMin, &pt.BasePriceMax, &pt.IsMonthly, &pt.SkipDesign, &pt.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan project type: %w", err)
		}
		types = append(types, pt)
	}

	return types, rows.Err()
}

// GetProjectType retrieves a project type by ID
func (r *PostgresRepository) GetProjectType(ctx context.Context, id int64) (*models.ProjectType, error) {
	query := `
		SELECT id, key, base_price_min, base_price_max, is_monthly, skip_design, sort_order
		FROM project_types
		WHERE id = $1
	`

	var pt models.ProjectType
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&pt.ID, &pt.Key, &pt.BasePriceMin, &pt.BasePriceMax, &pt.IsMonthly, &pt.SkipDesign, &pt.SortOrder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project type %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project type: %w", err)
	}

	return &pt, nil
}

// CreateProjectType inserts a project type and fills its generated ID
func (r *PostgresRepository) CreateProjectType(ctx context.Context, pt *models.ProjectType) error {
	query := `
		INSERT INTO project_types (key, base_price_min, base_price_max, is_monthly, skip_design, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		pt.Key, pt.BasePriceMin, pt.BasePriceMax, pt.IsMonthly, pt.SkipDesign, pt.SortOrder,
	).Scan(&pt.ID)
	if err != nil {
		return fmt.Errorf("failed to create project type: %w", err)
	}

	return nil
}

// UpdateProjectType updates a project type scoped by primary key
func (r *PostgresRepository) UpdateProjectType(ctx context.Context, pt *models.ProjectType) error {
	query := `
		UPDATE project_types
		SET key = $2, base_price_min = $3, base_price_max = $4, is_monthly = $5, skip_design = $6, sort_order = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		pt.ID, pt.Key, pt.BasePriceMin, pt.BasePriceMax, pt.IsMonthly, pt.SkipDesign, pt.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update project type: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project type %d: %w", pt.ID, ErrNotFound)
	}

	return nil
}

// DeleteProjectType deletes a project type by ID
func (r *PostgresRepository) DeleteProjectType(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM project_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project type: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project type %d: %w", id, ErrNotFound)
	}

	return nil
}

// CountProjectTypeDependents counts feature categories and scope modifiers
// still referencing the project type key
func (r *PostgresRepository) CountProjectTypeDependents(ctx context.Context, key string) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM feature_categories WHERE project_type_key = $1) +
			(SELECT COUNT(*) FROM scope_modifiers WHERE project_type_key = $1)
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, key).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count project type dependents: %w", err)
	}

	return count, nil
}

// ProjectTypeExists reports whether a project type with the given key exists
func (r *PostgresRepository) ProjectTypeExists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM project_types WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project type existence: %w", err)
	}

	return exists, nil
}

// --- Design levels ---

// ListDesignLevels returns all design levels in display order
func (r *PostgresRepository) ListDesignLevels(ctx context.Context) ([]models.DesignLevel, error) {
	query := `
		SELECT id, key, multiplier, sort_order
		FROM design_levels
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list design levels: %w", err)
	}
	defer rows.Close()

	var levels []models.DesignLevel
	for rows.Next() {
		var dl models.DesignLevel
		if err := rows.Scan(&dl.ID, &dl.Key, &dl.Multiplier, &dl.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan design level: %w", err)
		}
		levels = append(levels, dl)
	}

	return levels, rows.Err()
}

// CreateDesignLevel inserts a design level and fills its generated ID
func (r *PostgresRepository) CreateDesignLevel(ctx context.Context, dl *models.DesignLevel) error {
	query := `
		INSERT INTO design_levels (key, multiplier, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := r.pool.QueryRow(ctx, query, dl.Key, dl.Multiplier, dl.SortOrder).Scan(&dl.ID); err != nil {
		return fmt.Errorf("failed to create design level: %w", err)
	}

	return nil
}

// UpdateDesignLevel updates a design level scoped by primary key
func (r *PostgresRepository) UpdateDesignLevel(ctx context.Context, dl *models.DesignLevel) error {
	query := `
		UPDATE design_levels
		SET key = $2, multiplier = $3, sort_order = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, dl.ID, dl.Key, dl.Multiplier, dl.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update design level: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("design level %d: %w", dl.ID, ErrNotFound)
	}

	return nil
}

// DeleteDesignLevel deletes a design level by ID
func (r *PostgresRepository) DeleteDesignLevel(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM design_levels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete design level: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("design level %d: %w", id, ErrNotFound)
	}

	return nil
}

// --- Feature categories ---

// ListFeatureCategories returns all feature categories in display order
func (r *PostgresRepository) ListFeatureCategories(ctx context.Context) ([]models.FeatureCategory, error) {
	query := `
		SELECT id, project_type_key, category_key, sort_order
		FROM feature_categories
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature categories: %w", err)
	}
	defer rows.Close()

	var categories []models.FeatureCategory
	for rows.Next() {
		var fc models.FeatureCategory
		if err := rows.Scan(&fc.ID, &fc.ProjectTypeKey, &fc.CategoryKey, &fc.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan feature category: %w", err)
		}
		categories = append(categories, fc)
	}

	return categories, rows.Err()
}

// CreateFeatureCategory inserts a feature category and fills its generated ID
func (r *PostgresRepository) CreateFeatureCategory(ctx context.Context, fc *models.FeatureCategory) error {
	query := `
		INSERT INTO feature_categories (project_type_key, category_key, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := r.pool.QueryRow(ctx, query, fc.ProjectTypeKey, fc.CategoryKey, fc.SortOrder).Scan(&fc.ID); err != nil {
		return fmt.Errorf("failed to create feature category: %w", err)
	}

	return nil
}

// UpdateFeatureCategory updates a feature category scoped by primary key
func (r *PostgresRepository) UpdateFeatureCategory(ctx context.Context, fc *models.FeatureCategory) error {
	query := `
		UPDATE feature_categories
		SET project_type_key = $2, category_key = $3, sort_order = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, fc.ID, fc.ProjectTypeKey, fc.CategoryKey, fc.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update feature category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("feature category %d: %w", fc.ID, ErrNotFound)
	}

	return nil
}

// DeleteFeatureCategory deletes a feature category by ID
func (r *PostgresRepository) DeleteFeatureCategory(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM feature_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feature category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("feature category %d: %w", id, ErrNotFound)
	}

	return nil
}

// CountCategoryFeatures counts features belonging to a category
func (r *PostgresRepository) CountCategoryFeatures(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM features WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count category features: %w", err)
	}

	return count, nil
}

// --- Features ---

// ListFeatures returns all features in display order
func (r *PostgresRepository) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	query := `
		SELECT id, category_id, key, price_min, price_max, recommended, sort_order
		FROM features
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var features []models.Feature
	for rows.Next() {
		var f models.Feature
		if err := rows.Scan(&f.ID, &f.CategoryID, &f.Key, &f.PriceMin, &f.PriceMax, &f.Recommended, &f.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, f)
	}

	return features, rows.Err()
}

// CreateFeature inserts a feature and fills its generated ID
func (r *PostgresRepository) CreateFeature(ctx context.Context, f *models.Feature) error {
	query := `
		INSERT INTO features (category_id, key, price_min, price_max, recommended, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		f.CategoryID, f.Key, f.PriceMin, f.PriceMax, f.Recommended, f.SortOrder,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to create feature: %w", err)
	}

	return nil
}

// UpdateFeature updates a feature scoped by primary key
func (r *PostgresRepository) UpdateFeature(ctx context.Context, f *models.Feature) error {
	query := `
		UPDATE features
		SET category_id = $2, key = $3, price_min = $4, price_max = $5, recommended = $6, sort_order = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		f.ID, f.CategoryID, f.Key, f.PriceMin, f.PriceMax, f.Recommended, f.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("feature %d: %w", f.ID, ErrNotFound)
	}

	return nil
}

// DeleteFeature deletes a feature by ID
func (r *PostgresRepository) DeleteFeature(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("feature %d: %w", id, ErrNotFound)
	}

	return nil
}

// --- Scope modifiers ---

// ListScopeModifiers returns all scope modifiers in display order
func (r *PostgresRepository) ListScopeModifiers(ctx context.Context) ([]models.ScopeModifier, error) {
	query := `
		SELECT id, project_type_key, key, sort_order
		FROM scope_modifiers
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scope modifiers: %w", err)
	}
	defer rows.Close()

	var modifiers []models.ScopeModifier
	for rows.Next() {
		var sm models.ScopeModifier
		if err := rows.Scan(&sm.ID, &sm.ProjectTypeKey, &sm.Key, &sm.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan scope modifier: %w", err)
		}
		modifiers = append(modifiers, sm)
	}

	return modifiers, rows.Err()
}

// CreateScopeModifier inserts a scope modifier and fills its generated ID
func (r *PostgresRepository) CreateScopeModifier(ctx context.Context, sm *models.ScopeModifier) error {
	query := `
		INSERT INTO scope_modifiers (project_type_key, key, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := r.pool.QueryRow(ctx, query, sm.ProjectTypeKey, sm.Key, sm.SortOrder).Scan(&sm.ID); err != nil {
		return fmt.Errorf("failed to create scope modifier: %w", err)
	}

	return nil
}

// UpdateScopeModifier updates a scope modifier scoped by primary key
func (r *PostgresRepository) UpdateScopeModifier(ctx context.Context, sm *models.ScopeModifier) error {
	query := `
		UPDATE scope_modifiers
		SET project_type_key = $2, key = $3, sort_order = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, sm.ID, sm.ProjectTypeKey, sm.Key, sm.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update scope modifier: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("scope modifier %d: %w", sm.ID, ErrNotFound)
	}

	return nil
}

// DeleteScopeModifier deletes a scope modifier by ID
func (r *PostgresRepository) DeleteScopeModifier(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM scope_modifiers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scope modifier: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("scope modifier %d: %w", id, ErrNotFound)
	}

	return nil
}

// CountModifierOptions counts options belonging to a scope modifier
func (r *PostgresRepository) CountModifierOptions(ctx context.Context, modifierID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM scope_modifier_options WHERE scope_modifier_id = $1`, modifierID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count modifier options: %w", err)
	}

	return count, nil
}

// --- Scope modifier options ---

// ListScopeModifierOptions returns all scope modifier options in display order
func (r *PostgresRepository) ListScopeModifierOptions(ctx context.Context) ([]models.ScopeModifierOption, error) {
	query := `
		SELECT id, scope_modifier_id, value, multiplier, sort_order
		FROM scope_modifier_options
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scope modifier options: %w", err)
	}
	defer rows.Close()

	var options []models.ScopeModifierOption
	for rows.Next() {
		var opt models.ScopeModifierOption
		if err := rows.Scan(&opt.ID, &opt.ScopeModifierID, &opt.Value, &opt.Multiplier, &opt.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan scope modifier option: %w", err)
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

// CreateScopeModifierOption inserts an option and fills its generated ID
func (r *PostgresRepository) CreateScopeModifierOption(ctx context.Context, opt *models.ScopeModifierOption) error {
	query := `
		INSERT INTO scope_modifier_options (scope_modifier_id, value, multiplier, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, opt.ScopeModifierID, opt.Value, opt.Multiplier, opt.SortOrder).Scan(&opt.ID)
	if err != nil {
		return fmt.Errorf("failed to create scope modifier option: %w", err)
	}

	return nil
}

// UpdateScopeModifierOption updates an option scoped by primary key
func (r *PostgresRepository) UpdateScopeModifierOption(ctx context.Context, opt *models.ScopeModifierOption) error {
	query := `
		UPDATE scope_modifier_options
		SET scope_modifier_id = $2, value = $3, multiplier = $4, sort_order = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, opt.ID, opt.ScopeModifierID, opt.Value, opt.Multiplier, opt.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update scope modifier option: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("scope modifier option %d: %w", opt.ID, ErrNotFound)
	}

	return nil
}

// DeleteScopeModifierOption deletes an option by ID
func (r *PostgresRepository) DeleteScopeModifierOption(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM scope_modifier_options WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scope modifier option: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("scope modifier option %d: %w", id, ErrNotFound)
	}

	return nil
}

// --- Submissions ---

// CreateSubmission inserts a lead record. Submissions are append-only;
// no update or delete is exposed.
func (r *PostgresRepository) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO submissions (
			reference, source, name, email, phone, message,
			project_type_key, design_level_key, features, scope_modifiers, labels,
			ad_budget, price_min, price_max, is_monthly,
			solutions, service_types, budget, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		sub.Reference,
		string(sub.Source),
		sub.Name,
		sub.Email,
		sub.Phone,
		sub.Message,
		sub.ProjectTypeKey,
		sub.DesignLevelKey,
		sub.Features,
		sub.ScopeModifiers,
		sub.Labels,
		sub.AdBudget,
		sub.PriceMin,
		sub.PriceMax,
		sub.IsMonthly,
		sub.Solutions,
		sub.ServiceTypes,
		sub.Budget,
		sub.CreatedAt,
	).Scan(&sub.ID)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// ListSubmissions returns lead records, newest first
func (r *PostgresRepository) ListSubmissions(ctx context.Context, filters models.SubmissionFilters) ([]*models.Submission, error) {
	query := `
		SELECT id, reference, source, name, email, phone, message,
			project_type_key, design_level_key, features, scope_modifiers, labels,
			ad_budget, price_min, price_max, is_monthly,
			solutions, service_types, budget, created_at
		FROM submissions
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, string(filters.Source))
		argNum++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		var sub models.Submission
		var source string

		err := rows.Scan(
			&sub.ID,
			&sub.Reference,
			&source,
			&sub.Name,
			&sub.Email,
			&sub.Phone,
			&sub.Message,
			&sub.ProjectTypeKey,
			&sub.DesignLevelKey,
			&sub.Features,
			&sub.ScopeModifiers,
			&sub.Labels,
			&sub.AdBudget,
			&sub.PriceMin,
			&sub.PriceMax,
			&sub.IsMonthly,
			&sub.Solutions,
			&sub.ServiceTypes,
			&sub.Budget,
			&sub.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}

		sub.Source = models.SubmissionSource(source)
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

// --- Chat ---

// CreateChatMessage inserts a chat message and fills its generated ID
func (r *PostgresRepository) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (session_id, sender, text, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, msg.SessionID, string(msg.Sender), msg.Text, msg.SentAt).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}

	return nil
}

// ListChatMessages returns messages for a session in send order
func (r *PostgresRepository) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender, text, sent_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY sent_at, id
	`
	args := []interface{}{sessionID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		var sender string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &sender, &msg.Text, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msg.Sender = models.ChatSender(sender)
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}
