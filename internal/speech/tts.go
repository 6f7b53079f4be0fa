// Package speech renders text to MP3 audio through the Google Translate
// text-to-speech endpoint.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/komendev/vocabbot/internal/resilience"
)

// The endpoint rejects queries longer than this, so long texts are split at
// word boundaries and the MP3 fragments concatenated.
const maxFragmentLen = 200

type Synthesizer struct {
	http    *http.Client
	baseURL string
}

func NewSynthesizer(timeout time.Duration) *Synthesizer {
	return &Synthesizer{
		http:    &http.Client{Timeout: timeout},
		baseURL: "https://translate.google.com/translate_tts",
	}
}

// Synthesize returns MP3 audio for text. Markdown decoration is stripped
// first so it is not read aloud.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string, slow bool) ([]byte, error) {
	clean := sanitize(text)
	if strings.Trim(clean, ". ") == "" {
		return nil, resilience.Malformed(fmt.Errorf("nothing to pronounce"))
	}
	if lang == "" {
		lang = "en"
	}

	var audio bytes.Buffer
	for fragment := range resilience.Chunks(clean, maxFragmentLen) {
		mp3, err := s.fetchFragment(ctx, fragment, lang, slow)
		if err != nil {
			return nil, err
		}
		audio.Write(mp3)
	}
	return audio.Bytes(), nil
}

func (s *Synthesizer) fetchFragment(ctx context.Context, fragment, lang string, slow bool) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", fragment)
	if slow {
		q.Set("ttsspeed", "0.3")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, resilience.Malformed(err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, resilience.Transient(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resilience.RateLimited(fmt.Errorf("tts: status %d", resp.StatusCode), 30*time.Second)
	case resp.StatusCode >= 500:
		return nil, resilience.Transient(fmt.Errorf("tts: status %d", resp.StatusCode))
	default:
		return nil, resilience.Malformed(fmt.Errorf("tts: status %d", resp.StatusCode))
	}

	mp3, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("read audio: %w", err))
	}
	return mp3, nil
}

// sanitize flattens markdown and newlines into plain sentences.
func sanitize(text string) string {
	r := strings.NewReplacer("\n", ". ", "*", "", "_", "", "`", "", "#", "")
	return strings.TrimSpace(r.Replace(text))
}
