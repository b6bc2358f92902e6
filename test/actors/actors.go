package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"translatehub/change"
	"translatehub/dialogue"
	"translatehub/review"
	"translatehub/task"
)

var sampleTexts = []string{
	"Bonjour", "Salut", "Bonsoir", "Coucou", "Bonjour tout le monde",
	"Salut a tous", "Bien le bonjour", "Hello en francais",
}

// Proposer submits replacement translations for random dialogue lines.
// Submissions racing a task close are expected to lose sometimes.
func Proposer(ctx context.Context, svc *review.Service, taskID string, dialogueIDs []string, proposerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		dialogueID := dialogueIDs[rand.Intn(len(dialogueIDs))]
		text := fmt.Sprintf("%s #%d", sampleTexts[rand.Intn(len(sampleTexts))], rand.Intn(1000))
		_, err := svc.Submit(ctx, review.SubmitParams{
			TaskID:     taskID,
			DialogueID: dialogueID,
			ProposerID: proposerID,
			Text:       text,
		})
		if err != nil && !errors.Is(err, review.ErrTaskClosed) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("proposer submit: %w", err)
		}
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Reviewer decides pending changes. Several reviewers deliberately target the
// head of the pending list so they race on the same change; exactly one
// decision must win and the rest must observe the conflict.
func Reviewer(ctx context.Context, svc *review.Service, taskID, reviewerID string, canModerate bool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		pending, err := svc.ListPending(ctx, taskID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("reviewer list: %w", err)
		}
		if len(pending) > 0 {
			target := pending[0]
			decision := "approved"
			if rand.Intn(3) == 0 {
				decision = "rejected"
			}
			_, err := svc.Review(ctx, review.ReviewParams{
				TaskID:      taskID,
				ChangeID:    target.ID,
				ReviewerID:  reviewerID,
				CanModerate: canModerate,
				Decision:    decision,
			})
			if err != nil && !errors.Is(err, change.ErrAlreadyDecided) && !errors.Is(err, change.ErrNotFound) && !errors.Is(err, dialogue.ErrNotFound) {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return fmt.Errorf("reviewer decide: %w", err)
			}
		}
		time.Sleep(time.Duration(15+rand.Intn(30)) * time.Millisecond)
	}
}

// Closer periodically closes the task and reopens it, racing in-flight
// submissions.
func Closer(ctx context.Context, svc *task.Service, taskID, actorID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if _, err := svc.Close(ctx, taskID, actorID, true); err != nil && !errors.Is(err, task.ErrBadStatus) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("closer close: %w", err)
		}
		time.Sleep(time.Duration(50+rand.Intn(100)) * time.Millisecond)

		if _, err := svc.Reopen(ctx, taskID, actorID, true); err != nil && !errors.Is(err, task.ErrBadStatus) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("closer reopen: %w", err)
		}
		time.Sleep(time.Duration(100+rand.Intn(200)) * time.Millisecond)
	}
}
