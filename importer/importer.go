// Package importer turns an uploaded document into a task with one dialogue
// per line, optionally pretranslated.
package importer

import (
	"context"
	"log"
	"strings"

	"translatehub/dialogue"
	"translatehub/project"
	"translatehub/task"
	"translatehub/translator"
)

// SplitLines breaks an uploaded document into dialogue lines. Line endings are
// normalised, every interior line is kept (blank ones included, they carry
// document structure), and trailing empty lines are dropped.
func SplitLines(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ProjectDirectory is the slice of the project directory the importer needs.
type ProjectDirectory interface {
	GetByID(ctx context.Context, id string) (project.Project, error)
}

// TaskCreator materialises the task and its dialogues.
type TaskCreator interface {
	Create(ctx context.Context, params task.CreateParams) (task.View, error)
}

type Service struct {
	projects ProjectDirectory
	tasks    TaskCreator
	provider translator.Provider
}

func NewService(projects ProjectDirectory, tasks TaskCreator, provider translator.Provider) *Service {
	if provider == nil {
		provider = translator.Noop{}
	}
	return &Service{projects: projects, tasks: tasks, provider: provider}
}

// Params describes one uploaded document.
type Params struct {
	ProjectID string
	Name      string
	Filename  string
	CreatorID string
	Content   string
}

// Import creates a task from the uploaded document. Each line becomes one
// dialogue; when a pretranslation provider is configured its output seeds the
// default translation. Provider failures degrade to an empty translation so an
// unreachable provider never blocks ingestion.
func (s *Service) Import(ctx context.Context, params Params) (task.View, error) {
	p, err := s.projects.GetByID(ctx, params.ProjectID)
	if err != nil {
		return task.View{}, err
	}

	raw := SplitLines(params.Content)
	lines := make([]dialogue.Line, len(raw))
	for i, text := range raw {
		lines[i] = dialogue.Line{Text: text}
		if strings.TrimSpace(text) == "" {
			continue
		}
		trans, err := s.provider.Translate(ctx, text, p.SourceLang, p.TargetLang)
		if err != nil {
			log.Printf("importer: pretranslate line %d: %v", i+1, err)
			continue
		}
		lines[i].Trans = trans
	}

	return s.tasks.Create(ctx, task.CreateParams{
		ProjectID: params.ProjectID,
		Name:      params.Name,
		Filename:  params.Filename,
		CreatorID: params.CreatorID,
		Lines:     lines,
	})
}
