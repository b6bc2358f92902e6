package project

import "time"

// Project defines a source/target language pair for its tasks.
// Only the name is mutable after creation.
type Project struct {
	ID         string
	Name       string
	SourceLang string
	TargetLang string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateParams contains write parameters for creating projects.
type CreateParams struct {
	Name       string
	SourceLang string
	TargetLang string
}
