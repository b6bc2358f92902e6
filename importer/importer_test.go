package importer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"translatehub/project"
	"translatehub/task"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"unix newlines", "Hello\nWorld", []string{"Hello", "World"}},
		{"windows newlines", "Hello\r\nWorld\r\n", []string{"Hello", "World"}},
		{"bare carriage returns", "Hello\rWorld", []string{"Hello", "World"}},
		{"interior blank kept", "Hello\n\nWorld", []string{"Hello", "", "World"}},
		{"trailing blanks dropped", "Hello\n\n\n", []string{"Hello"}},
		{"empty document", "", nil},
		{"only newlines", "\n\n", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitLines(tc.content)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitLines(%q) = %#v, want %#v", tc.content, got, tc.want)
			}
		})
	}
}

func TestImport_PretranslatesLines(t *testing.T) {
	tasks := &fakeTaskCreator{}
	svc := NewService(fakeProjects{}, tasks, fakeProvider{prefix: "fr:"})

	_, err := svc.Import(context.Background(), Params{
		ProjectID: "proj-1",
		Filename:  "doc.txt",
		CreatorID: "user-1",
		Content:   "Hello\n\nWorld\n",
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	lines := tasks.params.Lines
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Trans != "fr:Hello" || lines[2].Trans != "fr:World" {
		t.Fatalf("expected pretranslated lines, got %+v", lines)
	}
	if lines[1].Trans != "" {
		t.Fatalf("expected blank line untranslated, got %q", lines[1].Trans)
	}
}

func TestImport_ProviderFailureDegrades(t *testing.T) {
	tasks := &fakeTaskCreator{}
	svc := NewService(fakeProjects{}, tasks, fakeProvider{err: errors.New("upstream down")})

	_, err := svc.Import(context.Background(), Params{
		ProjectID: "proj-1",
		Filename:  "doc.txt",
		CreatorID: "user-1",
		Content:   "Hello\nWorld",
	})
	if err != nil {
		t.Fatalf("expected ingestion to survive provider failure, got %v", err)
	}
	for _, l := range tasks.params.Lines {
		if l.Trans != "" {
			t.Fatalf("expected empty translations, got %q", l.Trans)
		}
	}
}

func TestImport_UnknownProject(t *testing.T) {
	svc := NewService(fakeProjects{err: project.ErrNotFound}, &fakeTaskCreator{}, nil)

	_, err := svc.Import(context.Background(), Params{ProjectID: "nope", Filename: "doc.txt", CreatorID: "user-1"})
	if !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("expected project.ErrNotFound, got %v", err)
	}
}

type fakeProjects struct {
	err error
}

func (f fakeProjects) GetByID(ctx context.Context, id string) (project.Project, error) {
	if f.err != nil {
		return project.Project{}, f.err
	}
	return project.Project{ID: id, Name: "demo", SourceLang: "en", TargetLang: "fr"}, nil
}

type fakeTaskCreator struct {
	params task.CreateParams
}

func (f *fakeTaskCreator) Create(ctx context.Context, params task.CreateParams) (task.View, error) {
	f.params = params
	return task.View{Task: task.Task{ID: "task-1", ProjectID: params.ProjectID}}, nil
}

type fakeProvider struct {
	prefix string
	err    error
}

func (f fakeProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.prefix + text, nil
}
