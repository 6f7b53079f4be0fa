package resilience

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	got := Split("hello world", 100)
	assert.Equal(t, []string{"hello world"}, got)
}

func TestSplitCutsAtWhitespace(t *testing.T) {
	got := Split("the quick brown fox", 9)
	assert.Equal(t, []string{"the quick", "brown fox"}, got)
	for _, seg := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg), 9)
	}
}

func TestSplitNeverBreaksWords(t *testing.T) {
	text := "resilience is the capacity to recover quickly from difficulties"
	words := strings.Fields(text)

	for width := 12; width <= 30; width++ {
		segs := Split(text, width)
		var rebuilt []string
		for _, seg := range segs {
			assert.LessOrEqual(t, utf8.RuneCountInString(seg), width, "width %d", width)
			rebuilt = append(rebuilt, strings.Fields(seg)...)
		}
		assert.Equal(t, words, rebuilt, "width %d", width)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	texts := []string{
		"a b c d e f g",
		"one two three four five six seven eight nine ten",
		"ephemeral: lasting for a very short time",
	}
	for _, text := range texts {
		// The join-with-space round trip only holds when no token needs a
		// hard cut, so start at the longest token length.
		minWidth := 0
		for _, w := range strings.Fields(text) {
			if n := utf8.RuneCountInString(w); n > minWidth {
				minWidth = n
			}
		}
		for width := minWidth; width <= minWidth+20; width++ {
			segs := Split(text, width)
			assert.Equal(t, text, strings.Join(segs, " "), "text %q width %d", text, width)
		}
	}
}

func TestSplitHardCutsOversizedToken(t *testing.T) {
	// No whitespace anywhere: the backward search finds nothing and must not
	// run off the end of the string.
	text := strings.Repeat("x", 25)
	got := Split(text, 10)
	require.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, got)
	assert.Equal(t, text, strings.Join(got, ""))
}

func TestSplitOversizedTokenAmongWords(t *testing.T) {
	got := Split("ok thisislongerthanten ok", 10)
	for _, seg := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg), 10)
	}
	assert.Equal(t, "okthisislongerthantenok", strings.Join(got, ""))
}

func TestSplitEmptyText(t *testing.T) {
	assert.Empty(t, Split("", 10))
}

func TestSplitCollapsesWhitespaceRunsAtCuts(t *testing.T) {
	got := Split("alpha  beta\n\ngamma", 6)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestChunksIsRestartable(t *testing.T) {
	seq := Chunks("one two three four", 7)
	first := make([]string, 0, 3)
	for s := range seq {
		first = append(first, s)
	}
	second := make([]string, 0, 3)
	for s := range seq {
		second = append(second, s)
	}
	assert.Equal(t, first, second)
}

func TestChunksUnicodeWidthIsRunes(t *testing.T) {
	text := "über schön größe"
	for _, seg := range Split(text, 6) {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg), 6)
	}
}
