package projects

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool used here.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads projects from the projects table.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("projects: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// List implements Repository.
func (r *PostgresRepository) List(ctx context.Context, order Order) ([]Project, error) {
	query := `
		SELECT id, name, description, image_url, live_url, has_3d, demo_url, created_at, updated_at
		FROM projects
		ORDER BY ` + order.orderBy()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("projects: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0)
	for rows.Next() {
		var p Project
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.ImageURL,
			&p.LiveURL,
			&p.Has3D,
			&p.DemoURL,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("projects: scan failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projects: list failed: %w", err)
	}
	return out, nil
}
