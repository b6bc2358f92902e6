package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested project does not exist.
var ErrNotFound = errors.New("project: not found")

// Repository provides access to project records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Project, error) {
	const query = `
		INSERT INTO projects (name, source_lang, target_lang)
		VALUES ($1, $2, $3)
		RETURNING id, name, source_lang, target_lang, created_at, updated_at
	`

	p, err := scanProject(r.pool.QueryRow(ctx, query, params.Name, params.SourceLang, params.TargetLang))
	if err != nil {
		return Project{}, fmt.Errorf("project: create: %w", err)
	}
	return p, nil
}

// GetByID fetches a project by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Project, error) {
	const query = `
		SELECT id, name, source_lang, target_lang, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, fmt.Errorf("project: query by id: %w", err)
	}
	return p, nil
}

// List fetches up to limit projects ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	const query = `
		SELECT id, name, source_lang, target_lang, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0, limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("project: scan: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project: iterate: %w", err)
	}

	return projects, nil
}

// Rename updates the only mutable project field.
func (r *Repository) Rename(ctx context.Context, id, name string) (Project, error) {
	const query = `
		UPDATE projects
		SET name = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, source_lang, target_lang, created_at, updated_at
	`

	p, err := scanProject(r.pool.QueryRow(ctx, query, id, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, fmt.Errorf("project: rename: %w", err)
	}
	return p, nil
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	return p, row.Scan(
		&p.ID,
		&p.Name,
		&p.SourceLang,
		&p.TargetLang,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
