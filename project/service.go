package project

import (
	"context"
	"fmt"
	"strings"
)

// Directory abstracts repository operations for the service.
type Directory interface {
	Create(ctx context.Context, params CreateParams) (Project, error)
	GetByID(ctx context.Context, id string) (Project, error)
	List(ctx context.Context, limit int) ([]Project, error)
	Rename(ctx context.Context, id, name string) (Project, error)
}

// Service exposes business-level project operations.
type Service struct {
	repo Directory
}

// NewService builds a Service using the provided repository.
func NewService(repo Directory) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Project, error) {
	if strings.TrimSpace(params.Name) == "" {
		return Project{}, fmt.Errorf("project: name required")
	}
	if params.SourceLang == "" || params.TargetLang == "" {
		return Project{}, fmt.Errorf("project: source and target language required")
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) GetByID(ctx context.Context, id string) (Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Project, error) {
	return s.repo.List(ctx, limit)
}

func (s *Service) Rename(ctx context.Context, id, name string) (Project, error) {
	if strings.TrimSpace(name) == "" {
		return Project{}, fmt.Errorf("project: name required")
	}
	return s.repo.Rename(ctx, id, name)
}
