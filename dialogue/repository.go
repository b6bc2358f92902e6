package dialogue

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested dialogue does not exist.
var ErrNotFound = errors.New("dialogue: not found")

// Repository is the dialogue store. All reads go through the pool; the two
// write paths (ingestion inserts, approval application) take the caller's
// transaction so the owning service controls atomicity.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a single dialogue with its translator attribution resolved.
func (r *Repository) Get(ctx context.Context, id string) (Dialogue, error) {
	const query = `
		SELECT d.id, d.task_id, d.position, d.text, d.trans, u.email
		FROM dialogues d
		LEFT JOIN users u ON u.id = d.translator_id
		WHERE d.id = $1
	`

	d, err := scanDialogue(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dialogue{}, ErrNotFound
		}
		return Dialogue{}, fmt.Errorf("dialogue: get: %w", err)
	}
	return d, nil
}

// ListByTask returns the task's dialogues in stable document order.
func (r *Repository) ListByTask(ctx context.Context, taskID string) ([]Dialogue, error) {
	const query = `
		SELECT d.id, d.task_id, d.position, d.text, d.trans, u.email
		FROM dialogues d
		LEFT JOIN users u ON u.id = d.translator_id
		WHERE d.task_id = $1
		ORDER BY d.position
	`

	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("dialogue: list: %w", err)
	}
	defer rows.Close()

	out := make([]Dialogue, 0, 32)
	for rows.Next() {
		d, err := scanDialogue(rows)
		if err != nil {
			return nil, fmt.Errorf("dialogue: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialogue: iterate: %w", err)
	}
	return out, nil
}

// InsertLines writes the ingested document lines inside the task-creation
// transaction, assigning positions in input order.
func (r *Repository) InsertLines(ctx context.Context, tx pgx.Tx, taskID string, lines []Line) ([]Dialogue, error) {
	const query = `
		INSERT INTO dialogues (task_id, position, text, trans)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	out := make([]Dialogue, 0, len(lines))
	for i, line := range lines {
		var id string
		if err := tx.QueryRow(ctx, query, taskID, i+1, line.Text, line.Trans).Scan(&id); err != nil {
			return nil, fmt.Errorf("dialogue: insert line %d: %w", i+1, err)
		}
		out = append(out, Dialogue{
			ID:       id,
			TaskID:   taskID,
			Position: i + 1,
			Text:     line.Text,
			Trans:    line.Trans,
		})
	}
	return out, nil
}

// ApplyApproval sets the current translation and translator attribution.
// It is invoked solely by the review engine inside the review transaction;
// no other code path writes dialogues.trans.
func (r *Repository) ApplyApproval(ctx context.Context, tx pgx.Tx, dialogueID, text, translatorID string) (Dialogue, error) {
	const query = `
		UPDATE dialogues
		SET trans = $2,
		    translator_id = $3
		WHERE id = $1
		RETURNING id, task_id, position, text, trans,
		          (SELECT email FROM users u WHERE u.id = dialogues.translator_id)
	`

	d, err := scanDialogue(tx.QueryRow(ctx, query, dialogueID, text, translatorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dialogue{}, ErrNotFound
		}
		return Dialogue{}, fmt.Errorf("dialogue: apply approval: %w", err)
	}
	return d, nil
}

func scanDialogue(row pgx.Row) (Dialogue, error) {
	var d Dialogue
	return d, row.Scan(
		&d.ID,
		&d.TaskID,
		&d.Position,
		&d.Text,
		&d.Trans,
		&d.Translator,
	)
}
