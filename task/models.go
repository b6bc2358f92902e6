package task

import (
	"time"

	"translatehub/change"
	"translatehub/dialogue"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Task is one uploaded document inside a project. It owns an ordered sequence
// of dialogues and the change ledger scoped to them.
type Task struct {
	ID        string
	ProjectID string
	Name      string
	Filename  string
	CreatorID string
	Creator   string // creator email, resolved at read time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams contains everything needed to materialise a task and its
// dialogues from a finalized, ordered document.
type CreateParams struct {
	ProjectID string
	Name      string
	Filename  string
	CreatorID string
	Lines     []dialogue.Line
}

// View is the authoritative read of a task: the record plus its dialogues in
// document order and the full change ledger. Callers re-read this after a
// mutation instead of patching client-side state.
type View struct {
	Task      Task
	Dialogues []dialogue.Dialogue
	Changes   []change.Change
}
