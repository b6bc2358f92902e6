package change

import "time"

// Status is the lifecycle state of a proposed translation change.
// pending is the only non-terminal state; approved and rejected are permanent.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decided reports whether the status is terminal.
func (s Status) Decided() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusPending:
		return false
	}
	return false
}

// ParseDecision maps a review decision value onto a terminal status.
// The bool result is false for anything that is not a valid decision.
func ParseDecision(v string) (Status, bool) {
	switch Status(v) {
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Change is one proposed replacement translation for a dialogue line.
// Content fields are immutable once written; only the review engine moves
// status out of pending, exactly once.
type Change struct {
	ID         string
	TaskID     string
	DialogueID string
	ProposerID string
	Proposer   string // proposer email, resolved at read time
	NewTrans   string
	Status     Status
	DecidedBy  *string // reviewer email, nil while pending
	DecidedAt  *time.Time
	CreatedAt  time.Time
}

// AppendParams contains write parameters for recording a new proposal.
type AppendParams struct {
	ID         string // optional; generated when empty
	TaskID     string
	DialogueID string
	ProposerID string
	NewTrans   string
}
