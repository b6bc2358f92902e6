package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"translatehub/change"
	"translatehub/dialogue"
)

// ErrForbidden signals the actor may not administer this task.
var ErrForbidden = errors.New("task: forbidden")

// DialogueStore is the slice of the dialogue store the task service needs.
type DialogueStore interface {
	InsertLines(ctx context.Context, tx pgx.Tx, taskID string, lines []dialogue.Line) ([]dialogue.Dialogue, error)
	ListByTask(ctx context.Context, taskID string) ([]dialogue.Dialogue, error)
}

// LedgerReader is the read slice of the change ledger used for task views.
type LedgerReader interface {
	ListByTask(ctx context.Context, taskID string, status change.Status) ([]change.Change, error)
}

type Service struct {
	pool        *pgxpool.Pool
	repo        Repository
	dialogues   DialogueStore
	changes     LedgerReader
	idGenerator func() string
	now         func() time.Time
}

func NewService(pool *pgxpool.Pool, repo Repository, dialogues DialogueStore, changes LedgerReader) *Service {
	if repo == nil {
		repo = NewRepository(pool)
	}
	return &Service{
		pool:        pool,
		repo:        repo,
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

// Create materialises a task and its dialogue rows in a single transaction.
// The caller supplies a finalized, ordered sequence of lines; order becomes
// the dialogues' permanent document order.
func (s *Service) Create(ctx context.Context, params CreateParams) (View, error) {
	if params.ProjectID == "" {
		return View{}, fmt.Errorf("task: missing project id")
	}
	if params.CreatorID == "" {
		return View{}, fmt.Errorf("task: missing creator id")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = params.Filename
	}
	if name == "" {
		return View{}, fmt.Errorf("task: name or filename required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return View{}, fmt.Errorf("task: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := s.repo.Create(ctx, tx, Task{
		ID:        s.idGenerator(),
		ProjectID: params.ProjectID,
		Name:      name,
		Filename:  params.Filename,
		CreatorID: params.CreatorID,
		Status:    StatusOpen,
	})
	if err != nil {
		return View{}, err
	}

	lines, err := s.dialogues.InsertLines(ctx, tx, created.ID, params.Lines)
	if err != nil {
		return View{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return View{}, fmt.Errorf("task: commit tx: %w", err)
	}

	return View{Task: created, Dialogues: lines, Changes: []change.Change{}}, nil
}

// Get returns the authoritative task view: record, dialogues in document
// order, and the full change ledger.
func (s *Service) Get(ctx context.Context, taskID string) (View, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return View{}, err
	}

	dialogues, err := s.dialogues.ListByTask(ctx, taskID)
	if err != nil {
		return View{}, err
	}

	changes, err := s.changes.ListByTask(ctx, taskID, "")
	if err != nil {
		return View{}, err
	}

	return View{Task: t, Dialogues: dialogues, Changes: changes}, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Close stops new proposal submissions on the task. Pending changes stay
// reviewable; the ledger is task history, closing only blocks new entries.
func (s *Service) Close(ctx context.Context, taskID, actorID string, canModerate bool) (Task, error) {
	if err := s.authorize(ctx, taskID, actorID, canModerate); err != nil {
		return Task{}, err
	}
	return s.repo.SetStatus(ctx, taskID, StatusOpen, StatusClosed)
}

// Reopen re-enables proposal submissions on a closed task.
func (s *Service) Reopen(ctx context.Context, taskID, actorID string, canModerate bool) (Task, error) {
	if err := s.authorize(ctx, taskID, actorID, canModerate); err != nil {
		return Task{}, err
	}
	return s.repo.SetStatus(ctx, taskID, StatusClosed, StatusOpen)
}

func (s *Service) authorize(ctx context.Context, taskID, actorID string, canModerate bool) error {
	if actorID == "" {
		return fmt.Errorf("task: missing actor id")
	}
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !canModerate && t.CreatorID != actorID {
		return ErrForbidden
	}
	return nil
}
