package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

// EnrollmentRepository tracks which user is learning which word and when the
// word was last encountered.
type EnrollmentRepository struct {
	db postgres.DBTX
}

// NewEnrollmentRepository creates a new EnrollmentRepository with the provided database pool.
func NewEnrollmentRepository(db postgres.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Upsert records an encounter. A repeated encounter moves touched_at forward,
// restarting the review cycle for that word.
func (r *EnrollmentRepository) Upsert(ctx context.Context, chatID, wordID int64, touchedAt time.Time) error {
	query := `
		INSERT INTO enrollments (chat_id, word_id, touched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, word_id) DO UPDATE SET touched_at = EXCLUDED.touched_at
	`

	_, err := r.db.Exec(ctx, query, chatID, wordID, touchedAt)
	if err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}

	return nil
}

// Delete removes a word from the user's vocabulary.
func (r *EnrollmentRepository) Delete(ctx context.Context, chatID int64, text string) error {
	query := `
		DELETE FROM enrollments e
		USING words w
		WHERE e.word_id = w.id AND e.chat_id = $1 AND w.word = $2
	`

	result, err := r.db.Exec(ctx, query, chatID, text)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}

// WordsTouchedOn retrieves the user's words whose last encounter falls on any
// of the given UTC calendar dates.
func (r *EnrollmentRepository) WordsTouchedOn(ctx context.Context, chatID int64, dates []time.Time) ([]entities.Word, error) {
	days := make([]string, len(dates))
	for i, d := range dates {
		days[i] = d.UTC().Format("2006-01-02")
	}

	query := `
		SELECT w.id, w.word, w.definitions, w.examples, w.translations, w.created_at
		FROM enrollments e
		JOIN words w ON w.id = e.word_id
		WHERE e.chat_id = $1
		  AND (e.touched_at AT TIME ZONE 'UTC')::date = ANY($2::date[])
		ORDER BY e.touched_at
	`

	rows, err := r.db.Query(ctx, query, chatID, days)
	if err != nil {
		return nil, fmt.Errorf("get words touched on dates: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// WordsTouchedSince retrieves the user's words encountered at or after the
// given instant, most recent first.
func (r *EnrollmentRepository) WordsTouchedSince(ctx context.Context, chatID int64, since time.Time) ([]entities.Word, error) {
	query := `
		SELECT w.id, w.word, w.definitions, w.examples, w.translations, w.created_at
		FROM enrollments e
		JOIN words w ON w.id = e.word_id
		WHERE e.chat_id = $1 AND e.touched_at >= $2
		ORDER BY e.touched_at DESC
	`

	rows, err := r.db.Query(ctx, query, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("get words touched since: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// AllWords retrieves the user's full vocabulary, most recent first.
func (r *EnrollmentRepository) AllWords(ctx context.Context, chatID int64) ([]entities.Word, error) {
	query := `
		SELECT w.id, w.word, w.definitions, w.examples, w.translations, w.created_at
		FROM enrollments e
		JOIN words w ON w.id = e.word_id
		WHERE e.chat_id = $1
		ORDER BY e.touched_at DESC
	`

	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("get all words: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// TouchedDates retrieves the distinct UTC dates on which the user encountered
// words, most recent first.
func (r *EnrollmentRepository) TouchedDates(ctx context.Context, chatID int64) ([]time.Time, error) {
	query := `
		SELECT DISTINCT (touched_at AT TIME ZONE 'UTC')::date AS day
		FROM enrollments
		WHERE chat_id = $1
		ORDER BY day DESC
	`

	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("get touched dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, entities.DateUTC(day))
	}

	return dates, rows.Err()
}

func scanWords(rows pgx.Rows) ([]entities.Word, error) {
	var words []entities.Word
	for rows.Next() {
		var w entities.Word
		err := rows.Scan(
			&w.ID,
			&w.Text,
			&w.Knowledge.Definitions,
			&w.Knowledge.Examples,
			&w.Knowledge.Translations,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}

	return words, rows.Err()
}
