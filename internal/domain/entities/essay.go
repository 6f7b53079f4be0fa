package entities

// EssayStyle controls the shape of generated review texts. Zero values fall
// back to the generator defaults (a B2-level story sized to the word list).
type EssayStyle struct {
	Theme  string
	Kind   string // "story", "essay" or "paragraph"
	Length string // "very-short", "short", "medium", "long", "very-long"
	Level  string // CEFR level, "A1".."C2"
	Slow   bool   // slow pronunciation for the audio rendition
}
