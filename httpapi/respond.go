package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"translatehub/auth"
	"translatehub/change"
	"translatehub/dialogue"
	"translatehub/project"
	"translatehub/review"
	"translatehub/task"
)

// respondErr maps domain sentinel errors onto HTTP status codes. Anything
// unmatched is a 500 and gets logged; sentinels never leak internals.
func respondErr(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, review.ErrEmptyText),
		errors.Is(err, review.ErrBadDecision):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, review.ErrUnauthorized),
		errors.Is(err, task.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, project.ErrNotFound),
		errors.Is(err, task.ErrNotFound),
		errors.Is(err, task.ErrProjectNotFound),
		errors.Is(err, dialogue.ErrNotFound),
		errors.Is(err, change.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, review.ErrTaskClosed),
		errors.Is(err, change.ErrAlreadyDecided),
		errors.Is(err, task.ErrBadStatus):
		status = http.StatusConflict
	default:
		log.Printf("httpapi: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type userJSON struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserJSON(u auth.User) userJSON {
	return userJSON{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, CreatedAt: u.CreatedAt}
}

type projectJSON struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toProjectJSON(p project.Project) projectJSON {
	return projectJSON{ID: p.ID, Name: p.Name, SourceLang: p.SourceLang, TargetLang: p.TargetLang, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

type taskJSON struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	Name      string      `json:"name"`
	Filename  string      `json:"filename"`
	Creator   string      `json:"creator"`
	Status    task.Status `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func toTaskJSON(t task.Task) taskJSON {
	return taskJSON{ID: t.ID, ProjectID: t.ProjectID, Name: t.Name, Filename: t.Filename, Creator: t.Creator, Status: t.Status, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

type dialogueJSON struct {
	ID         string  `json:"id"`
	Position   int     `json:"position"`
	Text       string  `json:"text"`
	Trans      string  `json:"trans"`
	Translator *string `json:"translator"`
}

func toDialogueJSON(d dialogue.Dialogue) dialogueJSON {
	return dialogueJSON{ID: d.ID, Position: d.Position, Text: d.Text, Trans: d.Trans, Translator: d.Translator}
}

type changeJSON struct {
	ID         string        `json:"id"`
	TaskID     string        `json:"task_id"`
	DialogueID string        `json:"dialogue_id"`
	User       string        `json:"user"`
	NewTrans   string        `json:"new_trans"`
	Status     change.Status `json:"status"`
	DecidedBy  *string       `json:"decided_by,omitempty"`
	DecidedAt  *time.Time    `json:"decided_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

func toChangeJSON(ch change.Change) changeJSON {
	return changeJSON{
		ID:         ch.ID,
		TaskID:     ch.TaskID,
		DialogueID: ch.DialogueID,
		User:       ch.Proposer,
		NewTrans:   ch.NewTrans,
		Status:     ch.Status,
		DecidedBy:  ch.DecidedBy,
		DecidedAt:  ch.DecidedAt,
		CreatedAt:  ch.CreatedAt,
	}
}

func toChangeListJSON(changes []change.Change) []changeJSON {
	out := make([]changeJSON, len(changes))
	for i, ch := range changes {
		out[i] = toChangeJSON(ch)
	}
	return out
}

type taskViewJSON struct {
	taskJSON
	Dialogues []dialogueJSON `json:"dialogues"`
	Changes   []changeJSON   `json:"changes"`
}

func toTaskViewJSON(v task.View) taskViewJSON {
	dialogues := make([]dialogueJSON, len(v.Dialogues))
	for i, d := range v.Dialogues {
		dialogues[i] = toDialogueJSON(d)
	}
	return taskViewJSON{
		taskJSON:  toTaskJSON(v.Task),
		Dialogues: dialogues,
		Changes:   toChangeListJSON(v.Changes),
	}
}
