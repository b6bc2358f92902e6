package dialogue

// Dialogue is one translatable line of a task document. The original text is
// immutable after ingestion; the current translation changes only when the
// review engine applies an approval. Translator carries the email of the actor
// whose approved proposal last set the translation, nil if never edited.
type Dialogue struct {
	ID         string
	TaskID     string
	Position   int
	Text       string
	Trans      string
	Translator *string
}

// Line is the ingestion input for one dialogue: the original text and an
// optional default (machine) translation.
type Line struct {
	Text  string
	Trans string
}
