package review

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"translatehub/change"
	"translatehub/dialogue"
	"translatehub/task"
)

func newTestService(dir *fakeDirectory, store *fakeStore, ledger *fakeLedger) (*Service, *fakePool) {
	pool := &fakePool{}
	svc := NewService(pool, dir, store, ledger)
	n := 0
	svc.WithIDGenerator(func() string { n++; return fmt.Sprintf("change-%d", n) })
	return svc, pool
}

func TestSubmit_EmptyTextRejected(t *testing.T) {
	dir := openTaskDirectory()
	ledger := newFakeLedger()
	svc, pool := newTestService(dir, newFakeStore(), ledger)

	_, err := svc.Submit(context.Background(), SubmitParams{
		TaskID:     "task-1",
		DialogueID: "dlg-1",
		ProposerID: "user-a",
		Text:       "  \n\t ",
	})
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("expected no change appended, got %d", len(ledger.appended))
	}
	if pool.tx != nil {
		t.Fatal("expected no transaction for rejected input")
	}
}

func TestSubmit_ClosedTaskConflicts(t *testing.T) {
	dir := openTaskDirectory()
	dir.task.Status = task.StatusClosed
	ledger := newFakeLedger()
	svc, pool := newTestService(dir, newFakeStore(), ledger)

	_, err := svc.Submit(context.Background(), SubmitParams{
		TaskID:     "task-1",
		DialogueID: "dlg-1",
		ProposerID: "user-a",
		Text:       "Bonjour",
	})
	if !errors.Is(err, ErrTaskClosed) {
		t.Fatalf("expected ErrTaskClosed, got %v", err)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("expected no change appended, got %d", len(ledger.appended))
	}
	if pool.tx == nil || pool.tx.committed {
		t.Fatal("expected transaction rolled back, not committed")
	}
}

func TestSubmit_DialogueMustBelongToTask(t *testing.T) {
	dir := openTaskDirectory()
	store := newFakeStore()
	store.dialogue.TaskID = "other-task"
	svc, _ := newTestService(dir, store, newFakeLedger())

	_, err := svc.Submit(context.Background(), SubmitParams{
		TaskID:     "task-1",
		DialogueID: "dlg-1",
		ProposerID: "user-a",
		Text:       "Bonjour",
	})
	if !errors.Is(err, dialogue.ErrNotFound) {
		t.Fatalf("expected dialogue.ErrNotFound, got %v", err)
	}
}

func TestSubmit_StoresTextVerbatim(t *testing.T) {
	dir := openTaskDirectory()
	ledger := newFakeLedger()
	svc, pool := newTestService(dir, newFakeStore(), ledger)

	text := "  Bonjour tout le monde  "
	created, err := svc.Submit(context.Background(), SubmitParams{
		TaskID:     "task-1",
		DialogueID: "dlg-1",
		ProposerID: "user-a",
		Text:       text,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Status != change.StatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.NewTrans != text {
		t.Fatalf("expected text stored verbatim, got %q", created.NewTrans)
	}
	if !pool.tx.committed {
		t.Fatal("expected commit")
	}
	if len(ledger.appended) != 1 {
		t.Fatalf("expected one appended change, got %d", len(ledger.appended))
	}
}

func TestSubmit_MultiplePendingCoexist(t *testing.T) {
	dir := openTaskDirectory()
	ledger := newFakeLedger()
	svc, _ := newTestService(dir, newFakeStore(), ledger)

	for _, p := range []struct{ proposer, text string }{
		{"user-a", "Bonjour"},
		{"user-b", "Salut"},
	} {
		if _, err := svc.Submit(context.Background(), SubmitParams{
			TaskID:     "task-1",
			DialogueID: "dlg-1",
			ProposerID: p.proposer,
			Text:       p.text,
		}); err != nil {
			t.Fatalf("submit %s: %v", p.proposer, err)
		}
	}

	pending, err := svc.ListPending(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending changes, got %d", len(pending))
	}
}

func TestReview_BadDecision(t *testing.T) {
	svc, _ := newTestService(openTaskDirectory(), newFakeStore(), newFakeLedger())

	_, err := svc.Review(context.Background(), ReviewParams{
		TaskID:     "task-1",
		ChangeID:   "change-1",
		ReviewerID: "creator-1",
		Decision:   "maybe",
	})
	if !errors.Is(err, ErrBadDecision) {
		t.Fatalf("expected ErrBadDecision, got %v", err)
	}
}

func TestReview_RequiresCreatorOrModerator(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(change.Change{ID: "change-1", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-a", NewTrans: "Bonjour", Status: change.StatusPending})
	store := newFakeStore()
	svc, _ := newTestService(openTaskDirectory(), store, ledger)

	_, err := svc.Review(context.Background(), ReviewParams{
		TaskID:     "task-1",
		ChangeID:   "change-1",
		ReviewerID: "user-b",
		Decision:   "approved",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Fatal("expected no dialogue mutation for unauthorized reviewer")
	}

	// Same reviewer with moderator capability succeeds.
	res, err := svc.Review(context.Background(), ReviewParams{
		TaskID:      "task-1",
		ChangeID:    "change-1",
		ReviewerID:  "user-b",
		CanModerate: true,
		Decision:    "approved",
	})
	if err != nil {
		t.Fatalf("moderator review: %v", err)
	}
	if res.Change.Status != change.StatusApproved {
		t.Fatalf("expected approved, got %s", res.Change.Status)
	}
}

func TestReview_ApproveMutatesDialogueAtomically(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(change.Change{ID: "change-1", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-a", NewTrans: "Bonjour", Status: change.StatusPending})
	store := newFakeStore()
	svc, pool := newTestService(openTaskDirectory(), store, ledger)

	res, err := svc.Review(context.Background(), ReviewParams{
		TaskID:     "task-1",
		ChangeID:   "change-1",
		ReviewerID: "creator-1",
		Decision:   "approved",
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Dialogue == nil {
		t.Fatal("expected updated dialogue in approval result")
	}
	if res.Dialogue.Trans != "Bonjour" {
		t.Fatalf("expected translation Bonjour, got %q", res.Dialogue.Trans)
	}
	if len(store.applied) != 1 || store.applied[0].translatorID != "user-a" {
		t.Fatalf("expected one approval applied crediting user-a, got %+v", store.applied)
	}
	if !pool.tx.committed {
		t.Fatal("expected commit")
	}
}

func TestReview_RejectLeavesDialogueUntouched(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(change.Change{ID: "change-1", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-a", NewTrans: "Bonjour", Status: change.StatusPending})
	store := newFakeStore()
	svc, pool := newTestService(openTaskDirectory(), store, ledger)

	res, err := svc.Review(context.Background(), ReviewParams{
		TaskID:     "task-1",
		ChangeID:   "change-1",
		ReviewerID: "creator-1",
		Decision:   "rejected",
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Dialogue != nil {
		t.Fatal("expected no dialogue in rejection result")
	}
	if len(store.applied) != 0 {
		t.Fatal("expected no dialogue mutation on reject")
	}
	if res.Change.Status != change.StatusRejected {
		t.Fatalf("expected rejected, got %s", res.Change.Status)
	}
	if !pool.tx.committed {
		t.Fatal("expected commit")
	}
}

func TestReview_DecidedChangeConflicts(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(change.Change{ID: "change-1", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-a", NewTrans: "Bonjour", Status: change.StatusRejected})
	store := newFakeStore()
	svc, pool := newTestService(openTaskDirectory(), store, ledger)

	_, err := svc.Review(context.Background(), ReviewParams{
		TaskID:     "task-1",
		ChangeID:   "change-1",
		ReviewerID: "creator-1",
		Decision:   "approved",
	})
	if !errors.Is(err, change.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Fatal("expected no dialogue mutation when decision loses")
	}
	if pool.tx == nil || pool.tx.committed {
		t.Fatal("expected rollback, not commit")
	}
}

func TestReview_ChangeMustBelongToTask(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(change.Change{ID: "change-1", TaskID: "other-task", DialogueID: "dlg-1", ProposerID: "user-a", NewTrans: "Bonjour", Status: change.StatusPending})
	svc, _ := newTestService(openTaskDirectory(), newFakeStore(), ledger)

	_, err := svc.Review(context.Background(), ReviewParams{
		TaskID:     "task-1",
		ChangeID:   "change-1",
		ReviewerID: "creator-1",
		Decision:   "approved",
	})
	if !errors.Is(err, change.ErrNotFound) {
		t.Fatalf("expected change.ErrNotFound, got %v", err)
	}
}

func TestLastApprovedWins(t *testing.T) {
	// Scenario: two pending proposals on one line; the moderator approves the
	// second, then the first. The dialogue must track each approval in order,
	// leaving both changes terminal.
	dir := openTaskDirectory()
	ledger := newFakeLedger()
	ledger.seed(change.Change{ID: "c1", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-a", NewTrans: "Bonjour", Status: change.StatusPending})
	ledger.seed(change.Change{ID: "c2", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-b", NewTrans: "Salut", Status: change.StatusPending})
	store := newFakeStore()
	svc, _ := newTestService(dir, store, ledger)

	if _, err := svc.Review(context.Background(), ReviewParams{TaskID: "task-1", ChangeID: "c2", ReviewerID: "creator-1", Decision: "approved"}); err != nil {
		t.Fatalf("approve c2: %v", err)
	}
	if store.dialogue.Trans != "Salut" {
		t.Fatalf("expected Salut after first approval, got %q", store.dialogue.Trans)
	}
	if got := ledger.changes["c1"].Status; got != change.StatusPending {
		t.Fatalf("expected sibling c1 untouched, got %s", got)
	}

	if _, err := svc.Review(context.Background(), ReviewParams{TaskID: "task-1", ChangeID: "c1", ReviewerID: "creator-1", Decision: "approved"}); err != nil {
		t.Fatalf("approve c1: %v", err)
	}
	if store.dialogue.Trans != "Bonjour" {
		t.Fatalf("expected Bonjour after second approval, got %q", store.dialogue.Trans)
	}
	if tr := store.dialogue.Translator; tr == nil || *tr != "user-a" {
		t.Fatalf("expected translator user-a, got %v", tr)
	}
	if ledger.changes["c1"].Status != change.StatusApproved || ledger.changes["c2"].Status != change.StatusApproved {
		t.Fatal("expected both changes approved")
	}
}

func TestListDialogueChanges(t *testing.T) {
	ledger := newFakeLedger()
	ledger.seed(change.Change{ID: "c1", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-a", NewTrans: "Bonjour", Status: change.StatusPending})
	ledger.seed(change.Change{ID: "c2", TaskID: "task-1", DialogueID: "dlg-1", ProposerID: "user-b", NewTrans: "Salut", Status: change.StatusRejected})
	svc, _ := newTestService(openTaskDirectory(), newFakeStore(), ledger)

	all, err := svc.ListDialogueChanges(context.Background(), "task-1", "dlg-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(all))
	}

	pending, err := svc.ListDialogueChanges(context.Background(), "task-1", "dlg-1", change.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "c1" {
		t.Fatalf("expected only c1 pending, got %+v", pending)
	}

	if _, err := svc.ListDialogueChanges(context.Background(), "other-task", "dlg-1", ""); !errors.Is(err, dialogue.ErrNotFound) {
		t.Fatalf("expected dialogue.ErrNotFound for wrong task, got %v", err)
	}
}

// --- fakes ---

func openTaskDirectory() *fakeDirectory {
	return &fakeDirectory{task: task.Task{
		ID:        "task-1",
		ProjectID: "proj-1",
		Name:      "chapter-1.txt",
		CreatorID: "creator-1",
		Status:    task.StatusOpen,
	}}
}

type fakeDirectory struct {
	task task.Task
	err  error
}

func (f *fakeDirectory) GetByID(ctx context.Context, id string) (task.Task, error) {
	if f.err != nil {
		return task.Task{}, f.err
	}
	if id != f.task.ID {
		return task.Task{}, task.ErrNotFound
	}
	return f.task, nil
}

func (f *fakeDirectory) LockShared(ctx context.Context, tx pgx.Tx, id string) (task.Task, error) {
	return f.GetByID(ctx, id)
}

type appliedApproval struct {
	dialogueID   string
	text         string
	translatorID string
}

type fakeStore struct {
	dialogue dialogue.Dialogue
	getErr   error
	applied  []appliedApproval
}

func newFakeStore() *fakeStore {
	return &fakeStore{dialogue: dialogue.Dialogue{
		ID:       "dlg-1",
		TaskID:   "task-1",
		Position: 1,
		Text:     "Hello",
	}}
}

func (f *fakeStore) Get(ctx context.Context, id string) (dialogue.Dialogue, error) {
	if f.getErr != nil {
		return dialogue.Dialogue{}, f.getErr
	}
	if id != f.dialogue.ID {
		return dialogue.Dialogue{}, dialogue.ErrNotFound
	}
	return f.dialogue, nil
}

func (f *fakeStore) ApplyApproval(ctx context.Context, tx pgx.Tx, dialogueID, text, translatorID string) (dialogue.Dialogue, error) {
	if dialogueID != f.dialogue.ID {
		return dialogue.Dialogue{}, dialogue.ErrNotFound
	}
	f.applied = append(f.applied, appliedApproval{dialogueID: dialogueID, text: text, translatorID: translatorID})
	f.dialogue.Trans = text
	tr := translatorID
	f.dialogue.Translator = &tr
	return f.dialogue, nil
}

type fakeLedger struct {
	changes  map[string]change.Change
	order    []string
	appended []change.Change
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{changes: make(map[string]change.Change)}
}

func (f *fakeLedger) seed(c change.Change) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC().Add(time.Duration(len(f.order)) * time.Millisecond)
	}
	f.changes[c.ID] = c
	f.order = append(f.order, c.ID)
}

func (f *fakeLedger) Append(ctx context.Context, tx pgx.Tx, params change.AppendParams) (change.Change, error) {
	c := change.Change{
		ID:         params.ID,
		TaskID:     params.TaskID,
		DialogueID: params.DialogueID,
		ProposerID: params.ProposerID,
		NewTrans:   params.NewTrans,
		Status:     change.StatusPending,
		CreatedAt:  time.Now().UTC().Add(time.Duration(len(f.order)) * time.Millisecond),
	}
	f.changes[c.ID] = c
	f.order = append(f.order, c.ID)
	f.appended = append(f.appended, c)
	return c, nil
}

func (f *fakeLedger) Get(ctx context.Context, id string) (change.Change, error) {
	c, ok := f.changes[id]
	if !ok {
		return change.Change{}, change.ErrNotFound
	}
	return c, nil
}

func (f *fakeLedger) ListByTask(ctx context.Context, taskID string, status change.Status) ([]change.Change, error) {
	out := make([]change.Change, 0, len(f.order))
	for _, id := range f.order {
		c := f.changes[id]
		if c.TaskID != taskID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeLedger) ListByDialogue(ctx context.Context, dialogueID string, status change.Status) ([]change.Change, error) {
	out := make([]change.Change, 0, len(f.order))
	for _, id := range f.order {
		c := f.changes[id]
		if c.DialogueID != dialogueID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeLedger) SetStatus(ctx context.Context, tx pgx.Tx, id string, expected, next change.Status, reviewerID string) (change.Change, error) {
	c, ok := f.changes[id]
	if !ok {
		return change.Change{}, change.ErrNotFound
	}
	if c.Status != expected {
		return change.Change{}, change.ErrAlreadyDecided
	}
	c.Status = next
	rev := reviewerID
	c.DecidedBy = &rev
	now := time.Now().UTC()
	c.DecidedAt = &now
	f.changes[id] = c
	return c, nil
}

type fakePool struct {
	tx *fakeTx
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

type fakeTx struct {
	rolled    bool
	committed bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeTx does not support nested transactions")
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeTx) Conn() *pgx.Conn {
	return nil
}
