// Package translator provides machine pretranslation for newly ingested
// documents. Pretranslation is best-effort: callers treat a failed line as
// untranslated, never as a failed ingestion.
package translator

import "context"

// Provider translates a single line of text between two languages.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Noop is the disabled provider: every line comes back untranslated.
type Noop struct{}

func (Noop) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return "", nil
}
