package resilience

import (
	"iter"
	"slices"
	"unicode"
)

// Chunks splits text into segments of at most maxWidth runes for transports
// with a message size limit. Cut points are found by searching backward from
// the limit for whitespace, so words are never split; the whitespace at the
// cut is consumed. A single token wider than the window is hard-cut at
// maxWidth. The sequence is lazy and restartable, and never reads past the
// end of the text.
func Chunks(text string, maxWidth int) iter.Seq[string] {
	return func(yield func(string) bool) {
		width := maxWidth
		if width < 1 {
			width = 1
		}
		rest := []rune(text)
		for len(rest) > 0 {
			if len(rest) <= width {
				yield(string(rest))
				return
			}

			cut := -1
			for i := width; i >= 0; i-- {
				if unicode.IsSpace(rest[i]) {
					cut = i
					break
				}
			}

			if cut < 0 {
				// One unbroken token wider than the window.
				if !yield(string(rest[:width])) {
					return
				}
				rest = rest[width:]
				continue
			}

			// A run of whitespace at the cut is consumed whole.
			for cut > 0 && unicode.IsSpace(rest[cut-1]) {
				cut--
			}

			if cut > 0 {
				if !yield(string(rest[:cut])) {
					return
				}
			}
			rest = rest[cut:]
			for len(rest) > 0 && unicode.IsSpace(rest[0]) {
				rest = rest[1:]
			}
		}
	}
}

// Split collects Chunks into a slice.
func Split(text string, maxWidth int) []string {
	return slices.Collect(Chunks(text, maxWidth))
}
