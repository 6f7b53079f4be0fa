package entities

import (
	"strings"
	"time"
)

// WordKnowledge is everything the dictionary knows about a word. Ordering of
// definitions and examples follows the source; translations may be empty when
// the bilingual dictionary has no entry.
type WordKnowledge struct {
	Definitions  []string
	Examples     []string
	Translations []string
}

// Word is a cached dictionary entry shared by every user who has encountered
// it. Content is immutable once stored; there is at most one Word per
// normalized text.
type Word struct {
	ID        int64
	Text      string // normalized form, see NormalizeWord
	Knowledge WordKnowledge
	CreatedAt time.Time
}

// NormalizeWord produces the canonical cache key for a raw word: trimmed,
// lower-cased, with inner whitespace runs collapsed to a single space.
func NormalizeWord(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	return strings.Join(fields, " ")
}
