package change

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the change identifier is unknown.
	ErrNotFound = errors.New("change: not found")
	// ErrAlreadyDecided signals the change has left pending; review decisions
	// are one-shot, so a compare-and-set against a decided change loses.
	ErrAlreadyDecided = errors.New("change: already decided")
)

const returning = `id, task_id, dialogue_id, proposer_id,
	(SELECT email FROM users u WHERE u.id = changes.proposer_id),
	new_trans, status,
	(SELECT email FROM users u WHERE u.id = changes.decided_by),
	decided_at, created_at`

// PGRepository is the append-oriented change ledger backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
	sq   sq.StatementBuilderType
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{
		pool: pool,
		sq:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Append records a new pending proposal inside the caller's transaction.
func (r *PGRepository) Append(ctx context.Context, tx pgx.Tx, params AppendParams) (Change, error) {
	query := `
		INSERT INTO changes (id, task_id, dialogue_id, proposer_id, new_trans, status)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, 'pending')
		RETURNING ` + returning

	c, err := scanChange(tx.QueryRow(ctx, query, params.ID, params.TaskID, params.DialogueID, params.ProposerID, params.NewTrans))
	if err != nil {
		return Change{}, fmt.Errorf("change: append: %w", err)
	}
	return c, nil
}

// Get fetches a change by identifier.
func (r *PGRepository) Get(ctx context.Context, id string) (Change, error) {
	query := `
		SELECT id, task_id, dialogue_id, proposer_id,
		       (SELECT email FROM users u WHERE u.id = changes.proposer_id),
		       new_trans, status,
		       (SELECT email FROM users u WHERE u.id = changes.decided_by),
		       decided_at, created_at
		FROM changes
		WHERE id = $1
	`

	c, err := scanChange(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Change{}, ErrNotFound
		}
		return Change{}, fmt.Errorf("change: get: %w", err)
	}
	return c, nil
}

// ListByTask returns the task's changes ordered by creation time ascending.
// An empty status lists every change regardless of lifecycle state.
func (r *PGRepository) ListByTask(ctx context.Context, taskID string, status Status) ([]Change, error) {
	q := r.listQuery().Where(sq.Eq{"c.task_id": taskID})
	if status != "" {
		q = q.Where(sq.Eq{"c.status": status})
	}
	return r.list(ctx, q)
}

// ListByDialogue returns one dialogue's changes, optionally filtered by status,
// ordered by creation time ascending.
func (r *PGRepository) ListByDialogue(ctx context.Context, dialogueID string, status Status) ([]Change, error) {
	q := r.listQuery().Where(sq.Eq{"c.dialogue_id": dialogueID})
	if status != "" {
		q = q.Where(sq.Eq{"c.status": status})
	}
	return r.list(ctx, q)
}

// SetStatus is the compare-and-set primitive behind review atomicity: the row
// moves from expected to next only if no other decision got there first. Zero
// rows updated means either the id is unknown or the change was already
// decided; the error distinguishes the two.
func (r *PGRepository) SetStatus(ctx context.Context, tx pgx.Tx, id string, expected, next Status, reviewerID string) (Change, error) {
	query := `
		UPDATE changes
		SET status = $3,
		    decided_by = $4,
		    decided_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + returning

	c, err := scanChange(tx.QueryRow(ctx, query, id, expected, next, reviewerID))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Change{}, fmt.Errorf("change: set status: %w", err)
	}

	var current Status
	if err := tx.QueryRow(ctx, `SELECT status FROM changes WHERE id = $1`, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Change{}, ErrNotFound
		}
		return Change{}, fmt.Errorf("change: set status fetch: %w", err)
	}
	return Change{}, ErrAlreadyDecided
}

func (r *PGRepository) listQuery() sq.SelectBuilder {
	return r.sq.Select(
		"c.id", "c.task_id", "c.dialogue_id", "c.proposer_id", "p.email",
		"c.new_trans", "c.status", "d.email", "c.decided_at", "c.created_at",
	).
		From("changes c").
		Join("users p ON p.id = c.proposer_id").
		LeftJoin("users d ON d.id = c.decided_by").
		OrderBy("c.created_at ASC", "c.id ASC")
}

func (r *PGRepository) list(ctx context.Context, q sq.SelectBuilder) ([]Change, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("change: build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("change: list: %w", err)
	}
	defer rows.Close()

	out := make([]Change, 0, 16)
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, fmt.Errorf("change: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("change: iterate: %w", err)
	}
	return out, nil
}

func scanChange(row pgx.Row) (Change, error) {
	var c Change
	return c, row.Scan(
		&c.ID,
		&c.TaskID,
		&c.DialogueID,
		&c.ProposerID,
		&c.Proposer,
		&c.NewTrans,
		&c.Status,
		&c.DecidedBy,
		&c.DecidedAt,
		&c.CreatedAt,
	)
}
