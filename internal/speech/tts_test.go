package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komendev/vocabbot/internal/resilience"
)

func newTestSynthesizer(t *testing.T, handler http.HandlerFunc) *Synthesizer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewSynthesizer(5 * time.Second)
	s.baseURL = srv.URL
	return s
}

func TestSynthesizeSingleFragment(t *testing.T) {
	var queries []string
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("MP3"))
	})

	audio, err := s.Synthesize(context.Background(), "ephemeral", "en", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("MP3"), audio)
	assert.Equal(t, []string{"ephemeral"}, queries)
}

func TestSynthesizeSplitsLongTextAtWordBoundaries(t *testing.T) {
	var queries []string
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("x"))
	})

	long := strings.Repeat("vocabulary ", 60) // well past one fragment
	audio, err := s.Synthesize(context.Background(), long, "en", false)
	require.NoError(t, err)
	require.Greater(t, len(queries), 1)
	for _, q := range queries {
		assert.LessOrEqual(t, len(q), maxFragmentLen)
		assert.False(t, strings.Contains(q, "vocabular "), "word split across fragments")
	}
	assert.Len(t, audio, len(queries))
}

func TestSynthesizeStripsMarkdown(t *testing.T) {
	var query string
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		_, _ = w.Write([]byte("x"))
	})

	_, err := s.Synthesize(context.Background(), "**bold** and _italic_", "en", false)
	require.NoError(t, err)
	assert.Equal(t, "bold and italic", query)
}

func TestSynthesizeSlowSetsSpeed(t *testing.T) {
	var speed string
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		speed = r.URL.Query().Get("ttsspeed")
		_, _ = w.Write([]byte("x"))
	})

	_, err := s.Synthesize(context.Background(), "word", "en", true)
	require.NoError(t, err)
	assert.Equal(t, "0.3", speed)
}

func TestSynthesizeClassifiesFailures(t *testing.T) {
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := s.Synthesize(context.Background(), "word", "en", false)
	require.Error(t, err)
	assert.Equal(t, resilience.KindTransient, resilience.KindOf(err))
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	s := NewSynthesizer(time.Second)
	_, err := s.Synthesize(context.Background(), " \n* ", "en", false)
	require.Error(t, err)
	assert.Equal(t, resilience.KindMalformed, resilience.KindOf(err))
}
