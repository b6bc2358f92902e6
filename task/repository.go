package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the task identifier is unknown.
	ErrNotFound = errors.New("task: not found")
	// ErrProjectNotFound signals the owning project does not exist.
	ErrProjectNotFound = errors.New("task: project not found")
	// ErrBadStatus signals a status transition from the wrong current state.
	ErrBadStatus = errors.New("task: invalid status transition")
)

const columns = `t.id, t.project_id, t.name, t.filename, t.creator_id, u.email, t.status, t.created_at, t.updated_at`

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, t Task) (Task, error)
	GetByID(ctx context.Context, id string) (Task, error)
	LockShared(ctx context.Context, tx pgx.Tx, id string) (Task, error)
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	SetStatus(ctx context.Context, id string, from, to Status) (Task, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, t Task) (Task, error) {
	const query = `
		INSERT INTO tasks (id, project_id, name, filename, creator_id, status)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6)
		RETURNING id, project_id, name, filename, creator_id,
		          (SELECT email FROM users u WHERE u.id = tasks.creator_id),
		          status, created_at, updated_at
	`

	created, err := scanTask(tx.QueryRow(ctx, query, t.ID, t.ProjectID, t.Name, t.Filename, t.CreatorID, t.Status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "tasks_project_id_fkey" {
			return Task{}, ErrProjectNotFound
		}
		return Task{}, fmt.Errorf("task: create: %w", err)
	}
	return created, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Task, error) {
	query := `
		SELECT ` + columns + `
		FROM tasks t
		JOIN users u ON u.id = t.creator_id
		WHERE t.id = $1
	`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("task: get: %w", err)
	}
	return t, nil
}

// LockShared reads the task under FOR SHARE so that concurrent proposal
// submissions do not serialize against each other while a racing close has to
// wait for them to commit.
func (r *PGRepository) LockShared(ctx context.Context, tx pgx.Tx, id string) (Task, error) {
	query := `
		SELECT ` + columns + `
		FROM tasks t
		JOIN users u ON u.id = t.creator_id
		WHERE t.id = $1
		FOR SHARE OF t
	`

	t, err := scanTask(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("task: lock shared: %w", err)
	}
	return t, nil
}

func (r *PGRepository) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	query := `
		SELECT ` + columns + `
		FROM tasks t
		JOIN users u ON u.id = t.creator_id
		WHERE t.project_id = $1
		ORDER BY t.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}
	defer rows.Close()

	out := make([]Task, 0, 8)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("task: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task: iterate: %w", err)
	}
	return out, nil
}

// SetStatus moves the task between open and closed with a conditional update;
// zero rows updated is diagnosed into ErrNotFound or ErrBadStatus.
func (r *PGRepository) SetStatus(ctx context.Context, id string, from, to Status) (Task, error) {
	const query = `
		UPDATE tasks t
		SET status = $3,
		    updated_at = now()
		FROM users u
		WHERE t.id = $1 AND t.status = $2 AND u.id = t.creator_id
		RETURNING t.id, t.project_id, t.name, t.filename, t.creator_id, u.email, t.status, t.created_at, t.updated_at
	`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id, from, to))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Task{}, fmt.Errorf("task: set status: %w", err)
	}

	var current Status
	if err := r.pool.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1`, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("task: set status fetch: %w", err)
	}
	return Task{}, ErrBadStatus
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	return t, row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Name,
		&t.Filename,
		&t.CreatorID,
		&t.Creator,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
