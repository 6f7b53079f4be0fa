package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres"
)

var ErrWordNotFound = errors.New("word not found")

// WordRepository provides access to the shared word knowledge cache.
type WordRepository struct {
	db postgres.DBTX
}

// NewWordRepository creates a new WordRepository with the provided database pool.
func NewWordRepository(db postgres.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

// InsertIfAbsent stores knowledge for a word unless another writer got there
// first, and returns the stored row either way.
func (r *WordRepository) InsertIfAbsent(ctx context.Context, text string, knowledge entities.WordKnowledge) (*entities.Word, error) {
	query := `
		INSERT INTO words (word, definitions, examples, translations)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (word) DO NOTHING
		RETURNING id, created_at
	`

	word := entities.Word{Text: text, Knowledge: knowledge}
	err := r.db.QueryRow(ctx, query,
		text, orEmpty(knowledge.Definitions), orEmpty(knowledge.Examples), orEmpty(knowledge.Translations),
	).Scan(&word.ID, &word.CreatedAt)

	if err == nil {
		return &word, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insert word: %w", err)
	}

	// Lost the race: the row already exists, read the winner's version.
	return r.GetByText(ctx, text)
}

// orEmpty keeps nil slices out of the INSERT: pgx encodes a nil []string as
// SQL NULL, which would trip the NOT NULL array columns.
func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// GetByText retrieves a word by its normalized text.
func (r *WordRepository) GetByText(ctx context.Context, text string) (*entities.Word, error) {
	query := `
		SELECT id, word, definitions, examples, translations, created_at
		FROM words
		WHERE word = $1
	`

	var word entities.Word
	err := r.db.QueryRow(ctx, query, text).Scan(
		&word.ID,
		&word.Text,
		&word.Knowledge.Definitions,
		&word.Knowledge.Examples,
		&word.Knowledge.Translations,
		&word.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("get word: %w", err)
	}

	return &word, nil
}
