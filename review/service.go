// Package review implements the change-proposal and review workflow: it is
// the only writer of change statuses and, through approvals, of dialogue
// translations. Each operation is one transaction against the backing store;
// the decision itself is a compare-and-set on the change row, so two
// reviewers racing on the same change produce exactly one decision and the
// loser observes a conflict.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"translatehub/change"
	"translatehub/dialogue"
	"translatehub/task"
)

var (
	// ErrEmptyText signals a proposal whose text is empty after trimming.
	ErrEmptyText = errors.New("review: proposed text is empty")
	// ErrBadDecision signals a decision value outside approved/rejected.
	ErrBadDecision = errors.New("review: invalid decision")
	// ErrUnauthorized signals the actor lacks reviewer capability for the task.
	ErrUnauthorized = errors.New("review: not authorized to review")
	// ErrTaskClosed signals a proposal submitted against a closed task.
	ErrTaskClosed = errors.New("review: task is closed")
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Directory is the slice of the task directory the engine consults for
// validation; implemented by task.PGRepository.
type Directory interface {
	GetByID(ctx context.Context, id string) (task.Task, error)
	LockShared(ctx context.Context, tx pgx.Tx, id string) (task.Task, error)
}

// Store is the dialogue store as seen by the engine. ApplyApproval is only
// ever called from inside the review transaction.
type Store interface {
	Get(ctx context.Context, id string) (dialogue.Dialogue, error)
	ApplyApproval(ctx context.Context, tx pgx.Tx, dialogueID, text, translatorID string) (dialogue.Dialogue, error)
}

// Ledger is the change ledger as seen by the engine.
type Ledger interface {
	Append(ctx context.Context, tx pgx.Tx, params change.AppendParams) (change.Change, error)
	Get(ctx context.Context, id string) (change.Change, error)
	ListByTask(ctx context.Context, taskID string, status change.Status) ([]change.Change, error)
	ListByDialogue(ctx context.Context, dialogueID string, status change.Status) ([]change.Change, error)
	SetStatus(ctx context.Context, tx pgx.Tx, id string, expected, next change.Status, reviewerID string) (change.Change, error)
}

type Service struct {
	pool        TxBeginner
	tasks       Directory
	dialogues   Store
	changes     Ledger
	idGenerator func() string
	now         func() time.Time
}

func NewService(pool TxBeginner, tasks Directory, dialogues Store, changes Ledger) *Service {
	return &Service{
		pool:        pool,
		tasks:       tasks,
		dialogues:   dialogues,
		changes:     changes,
		idGenerator: func() string { return uuid.NewString() },
		now:         time.Now,
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGenerator = gen
	return s
}

// SubmitParams carries one proposed replacement translation.
type SubmitParams struct {
	TaskID     string
	DialogueID string
	ProposerID string
	Text       string
}

// Submit records a new pending change for a dialogue line. Any number of
// pending changes may coexist per dialogue; submissions never conflict with
// each other, only with a concurrently closing task.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (change.Change, error) {
	if params.ProposerID == "" {
		return change.Change{}, fmt.Errorf("review: missing proposer id")
	}
	if strings.TrimSpace(params.Text) == "" {
		return change.Change{}, ErrEmptyText
	}

	d, err := s.dialogues.Get(ctx, params.DialogueID)
	if err != nil {
		return change.Change{}, err
	}
	if d.TaskID != params.TaskID {
		return change.Change{}, dialogue.ErrNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return change.Change{}, fmt.Errorf("review: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	t, err := s.tasks.LockShared(ctx, tx, params.TaskID)
	if err != nil {
		return change.Change{}, err
	}
	if t.Status != task.StatusOpen {
		return change.Change{}, ErrTaskClosed
	}

	// Text is stored exactly as submitted; trimming applies to the emptiness
	// check only.
	created, err := s.changes.Append(ctx, tx, change.AppendParams{
		ID:         s.idGenerator(),
		TaskID:     params.TaskID,
		DialogueID: params.DialogueID,
		ProposerID: params.ProposerID,
		NewTrans:   params.Text,
	})
	if err != nil {
		return change.Change{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return change.Change{}, fmt.Errorf("review: commit submit: %w", err)
	}

	return created, nil
}

// ListPending returns the task's pending changes, oldest first.
func (s *Service) ListPending(ctx context.Context, taskID string) ([]change.Change, error) {
	return s.ListChanges(ctx, taskID, change.StatusPending)
}

// ListChanges returns the task's changes oldest first, optionally filtered by
// status. An empty status returns the full ledger.
func (s *Service) ListChanges(ctx context.Context, taskID string, status change.Status) ([]change.Change, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.changes.ListByTask(ctx, taskID, status)
}

// ListDialogueChanges returns one dialogue line's changes oldest first,
// optionally filtered by status.
func (s *Service) ListDialogueChanges(ctx context.Context, taskID, dialogueID string, status change.Status) ([]change.Change, error) {
	d, err := s.dialogues.Get(ctx, dialogueID)
	if err != nil {
		return nil, err
	}
	if d.TaskID != taskID {
		return nil, dialogue.ErrNotFound
	}
	return s.changes.ListByDialogue(ctx, dialogueID, status)
}

// ReviewParams carries one moderator decision.
type ReviewParams struct {
	TaskID      string
	ChangeID    string
	ReviewerID  string
	CanModerate bool
	Decision    string
}

// Result is the outcome of a review: the decided change, plus the updated
// dialogue when the decision was an approval.
type Result struct {
	Change   change.Change
	Dialogue *dialogue.Dialogue
}

// Review applies a one-shot approve/reject decision. On approval the change
// status update and the dialogue mutation commit together or not at all.
// Sibling pending changes on the same dialogue are left untouched; a later
// approval simply overwrites the dialogue again (last-approved-wins).
func (s *Service) Review(ctx context.Context, params ReviewParams) (Result, error) {
	if params.ReviewerID == "" {
		return Result{}, fmt.Errorf("review: missing reviewer id")
	}
	next, ok := change.ParseDecision(params.Decision)
	if !ok {
		return Result{}, ErrBadDecision
	}

	c, err := s.changes.Get(ctx, params.ChangeID)
	if err != nil {
		return Result{}, err
	}
	if c.TaskID != params.TaskID {
		return Result{}, change.ErrNotFound
	}

	t, err := s.tasks.GetByID(ctx, c.TaskID)
	if err != nil {
		return Result{}, err
	}
	if !params.CanModerate && t.CreatorID != params.ReviewerID {
		return Result{}, ErrUnauthorized
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("review: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	decided, err := s.changes.SetStatus(ctx, tx, params.ChangeID, change.StatusPending, next, params.ReviewerID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Change: decided}
	if next == change.StatusApproved {
		d, err := s.dialogues.ApplyApproval(ctx, tx, decided.DialogueID, decided.NewTrans, decided.ProposerID)
		if err != nil {
			return Result{}, err
		}
		res.Dialogue = &d
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("review: commit decision: %w", err)
	}

	return res, nil
}
