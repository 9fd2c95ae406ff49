package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// Seeder bootstraps an empty database from a catalog file
type Seeder struct {
	db *sql.DB
}

// Open connects to the database for seeding
func Open(dsn string) (*Seeder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Seeder{db: db}, nil
}

// Close releases the seeding connection
func (s *Seeder) Close() error {
	return s.db.Close()
}

// Run loads the catalog file and inserts it if the database holds no
// project types yet. Seeding an already populated database is a no-op.
func (s *Seeder) Run(ctx context.Context, path string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM project_types").Scan(&count); err != nil {
		return fmt.Errorf("failed to check project types: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping", "project_types", count)
		return nil
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		return err
	}

	if err := s.insert(ctx, catalog); err != nil {
		return err
	}

	slog.Info("database seeded",
		"project_types", len(catalog.ProjectTypes),
		"design_levels", len(catalog.DesignLevels),
	)
	return nil
}

// insert writes the whole catalog in a single transaction so a partial
// seed never survives a failure
func (s *Seeder) insert(ctx context.Context, catalog *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for i, dl := range catalog.DesignLevels {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO design_levels (key, multiplier, sort_order) VALUES ($1, $2, $3)`,
			dl.Key, dl.Multiplier, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert design level %q: %w", dl.Key, err)
		}
	}

	for i, pt := range catalog.ProjectTypes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO project_types (key, base_price_min, base_price_max, is_monthly, skip_design, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			pt.Key, pt.BasePriceMin, pt.BasePriceMax, pt.IsMonthly, pt.SkipDesign, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert project type %q: %w", pt.Key, err)
		}

		for j, cat := range pt.Categories {
			var categoryID int64
			err := tx.QueryRowContext(ctx,
				`INSERT INTO feature_categories (project_type_key, category_key, sort_order)
				 VALUES ($1, $2, $3) RETURNING id`,
				pt.Key, cat.Key, j,
			).Scan(&categoryID)
			if err != nil {
				return fmt.Errorf("failed to insert category %q: %w", cat.Key, err)
			}

			for k, f := range cat.Features {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO features (category_id, key, price_min, price_max, recommended, sort_order)
					 VALUES ($1, $2, $3, $4, $5, $6)`,
					categoryID, f.Key, f.PriceMin, f.PriceMax, f.Recommended, k,
				)
				if err != nil {
					return fmt.Errorf("failed to insert feature %q: %w", f.Key, err)
				}
			}
		}

		for j, sm := range pt.ScopeModifiers {
			var modifierID int64
			err := tx.QueryRowContext(ctx,
				`INSERT INTO scope_modifiers (project_type_key, key, sort_order)
				 VALUES ($1, $2, $3) RETURNING id`,
				pt.Key, sm.Key, j,
			).Scan(&modifierID)
			if err != nil {
				return fmt.Errorf("failed to insert scope modifier %q: %w", sm.Key, err)
			}

			for k, opt := range sm.Options {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO scope_modifier_options (scope_modifier_id, value, multiplier, sort_order)
					 VALUES ($1, $2, $3, $4)`,
					modifierID, opt.Value, opt.Multiplier, k,
				)
				if err != nil {
					return fmt.Errorf("failed to insert scope option %q: %w", opt.Value, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}
