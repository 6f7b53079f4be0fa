// Package ai generates review texts that weave a user's due vocabulary into
// a short narrative, using the Gemini API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/resilience"
)

var ErrNoWords = errors.New("no words to write about")

// EssayWriter produces stories/essays/paragraphs from word lists. Failures
// are classified for the resilient caller; callers are expected to wrap
// GenerateEssay with maxAttempts = 3.
type EssayWriter struct {
	client *genai.Client
	model  string
	logger *zap.Logger

	mu   sync.Mutex // guards rand; prompts are built from both the handler and the broadcast sweep
	rand *rand.Rand
}

func NewEssayWriter(ctx context.Context, apiKey, model string, logger *zap.Logger) (*EssayWriter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		return nil, errors.New("gemini model is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &EssayWriter{
		client: client,
		model:  model,
		logger: logger,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (w *EssayWriter) GenerateEssay(ctx context.Context, words []string, style entities.EssayStyle) (string, error) {
	if len(words) == 0 {
		return "", resilience.Malformed(ErrNoWords)
	}

	prompt, system := w.promptFor(words, style)
	started := time.Now()

	resp, err := w.client.Models.GenerateContent(ctx, w.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", resilience.Transient(fmt.Errorf("generate content: %w", err))
	}

	essay := resp.Text()
	if strings.TrimSpace(essay) == "" {
		// Empty completions are sporadic; a retry usually fixes them.
		return "", resilience.Transient(errors.New("empty completion"))
	}

	w.logger.Info("essay generated",
		zap.Int("vocab_count", len(words)),
		zap.Int("essay_words", len(strings.Fields(essay))),
		zap.Duration("took", time.Since(started)),
	)
	return essay, nil
}

func (w *EssayWriter) promptFor(words []string, style entities.EssayStyle) (prompt, system string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return buildPrompt(words, style, w.rand)
}

// buildPrompt assembles the user prompt and system instruction. Word order
// is shuffled so repeated essays over the same vocabulary read differently.
func buildPrompt(words []string, style entities.EssayStyle, rng *rand.Rand) (prompt, system string) {
	shuffled := make([]string, len(words))
	copy(shuffled, words)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	kind := style.Kind
	switch kind {
	case "story", "essay", "paragraph":
	default:
		kind = "story"
	}

	level := style.Level
	if level == "" {
		level = "B2"
	}

	wordCount := targetWordCount(style.Length, len(words))

	theme := ""
	if style.Theme != "" {
		theme = " about " + style.Theme
	}

	prompt = fmt.Sprintf(`Write a %d-word %s%s that naturally incorporates the following vocabulary words:
%s

The %s should have a clear beginning, middle, and end. It must be engaging, imaginative, and easy to follow.
Use vivid, descriptive language to create imagery and evoke emotion, but avoid complex sentence structures or obscure references.
Each vocabulary word must be used **bolded**, in proper context, and blended seamlessly into the narrative.
Do not define the words directly or list them.

Ensure correct grammar and punctuation throughout.
Return only the %s, with no additional text or explanations.`,
		wordCount, kind, theme, strings.Join(shuffled, ", "), kind, kind)

	system = fmt.Sprintf(`You are a master storyteller and educator. Your mission is to teach vocabulary by crafting emotionally engaging, context-rich %ss.
You must never define the vocabulary words directly; instead, demonstrate their meanings through natural use in the narrative.

All writing should be appropriate for a reader at the %s English level: clear, expressive, and grammatically sound.
Style should be suitable for markdown format.`, kind, level)

	return prompt, system
}

// targetWordCount maps a length bucket to an essay size; without a bucket it
// scales with the vocabulary, denser for small lists.
func targetWordCount(length string, vocabCount int) int {
	switch length {
	case "very-long":
		return 1000
	case "long":
		return 750
	case "medium":
		return 500
	case "short":
		return 300
	case "very-short":
		return 150
	}

	switch {
	case vocabCount < 5:
		return 75
	case vocabCount < 10:
		return vocabCount * 15
	case vocabCount < 20:
		return vocabCount * 12
	case vocabCount < 30:
		return vocabCount * 10
	default:
		return vocabCount * 8
	}
}
