package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres/repository"
	"github.com/komendev/vocabbot/internal/resilience"
)

// ErrWordNotFound means the dictionary has no entry for the word. Nothing is
// cached in that case, so a later attempt hits the dictionary again.
var ErrWordNotFound = errors.New("word not found in dictionary")

// WordCache serves word knowledge from storage, reaching out to the
// dictionary only on the first encounter of a word across all users.
type WordCache struct {
	words    WordRepository
	provider KnowledgeProvider
	caller   *resilience.Caller

	maxAttempts int
	baseDelay   time.Duration

	mu       sync.Mutex
	inflight map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewWordCache(words WordRepository, provider KnowledgeProvider, caller *resilience.Caller, maxAttempts int, baseDelay time.Duration) *WordCache {
	return &WordCache{
		words:       words,
		provider:    provider,
		caller:      caller,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		inflight:    make(map[string]*keyLock),
	}
}

// GetOrCreate returns the cached knowledge for a word, looking it up in the
// dictionary and persisting the result on first encounter. Concurrent first
// encounters of the same word share a single lookup.
func (c *WordCache) GetOrCreate(ctx context.Context, rawText string) (*entities.Word, error) {
	text := entities.NormalizeWord(rawText)
	if text == "" {
		return nil, ErrWordNotFound
	}

	word, err := c.words.GetByText(ctx, text)
	if err == nil {
		return word, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("read word cache: %w", err)
	}

	c.lock(text)
	defer c.unlock(text)

	// Another goroutine may have filled the cache while we waited.
	word, err = c.words.GetByText(ctx, text)
	if err == nil {
		return word, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("read word cache: %w", err)
	}

	knowledge, err := resilience.Invoke(ctx, c.caller, "dictionary lookup", c.maxAttempts, c.baseDelay,
		func(ctx context.Context) (entities.WordKnowledge, error) {
			return c.provider.Lookup(ctx, text)
		})
	if err != nil {
		return nil, err
	}

	if len(knowledge.Definitions) == 0 && len(knowledge.Examples) == 0 {
		return nil, fmt.Errorf("%q: %w", text, ErrWordNotFound)
	}

	word, err = c.words.InsertIfAbsent(ctx, text, knowledge)
	if err != nil {
		return nil, fmt.Errorf("store word: %w", err)
	}

	return word, nil
}

func (c *WordCache) lock(key string) {
	c.mu.Lock()
	l, ok := c.inflight[key]
	if !ok {
		l = &keyLock{}
		c.inflight[key] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
}

func (c *WordCache) unlock(key string) {
	c.mu.Lock()
	l := c.inflight[key]
	l.refs--
	if l.refs == 0 {
		delete(c.inflight, key)
	}
	c.mu.Unlock()

	l.mu.Unlock()
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrWordNotFound)
}
