package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres/repository"
	"github.com/komendev/vocabbot/internal/resilience"
)

// ErrNotEnrolled means the word is not part of the user's vocabulary.
var ErrNotEnrolled = errors.New("word not in vocabulary")

// Stats summarizes a user's vocabulary activity.
type Stats struct {
	TotalWords int
	Today      int
	ThisWeek   int
	StreakDays int
}

// Engine ties the word cache and the scheduler together into the operations
// the bot exposes per user.
type Engine struct {
	cache       *WordCache
	scheduler   *Scheduler
	users       UserRepository
	enrollments EnrollmentRepository
	logger      *zap.Logger

	now func() time.Time
}

func NewEngine(cache *WordCache, scheduler *Scheduler, users UserRepository, enrollments EnrollmentRepository, logger *zap.Logger) *Engine {
	return &Engine{
		cache:       cache,
		scheduler:   scheduler,
		users:       users,
		enrollments: enrollments,
		logger:      logger,
		now:         time.Now,
	}
}

// RecordEncounter adds a word to the user's vocabulary, fetching its
// knowledge through the cache. Re-encountering a known word moves it back to
// today, restarting its review cycle from the beginning.
func (e *Engine) RecordEncounter(ctx context.Context, chatID int64, rawWord string) (*entities.Word, error) {
	word, err := e.cache.GetOrCreate(ctx, rawWord)
	if err != nil {
		return nil, err
	}

	if err := e.enrollments.Upsert(ctx, chatID, word.ID, e.now().UTC()); err != nil {
		return nil, fmt.Errorf("enroll word: %w", err)
	}

	return word, nil
}

// Define looks a word up without adding it to the user's vocabulary.
func (e *Engine) Define(ctx context.Context, rawWord string) (*entities.Word, error) {
	return e.cache.GetOrCreate(ctx, rawWord)
}

// DailyDigest returns the words the user should review today.
func (e *Engine) DailyDigest(ctx context.Context, chatID int64) ([]entities.Word, error) {
	return e.scheduler.DueWords(ctx, chatID, e.now())
}

// WindowWords returns the user's words encountered in the last days days,
// counted in whole UTC dates so "today" means the current calendar day.
func (e *Engine) WindowWords(ctx context.Context, chatID int64, days int) ([]entities.Word, error) {
	since := entities.DateUTC(e.now()).AddDate(0, 0, -(days - 1))
	return e.scheduler.WindowWords(ctx, chatID, since)
}

// AllWords returns the user's full vocabulary, most recent first.
func (e *Engine) AllWords(ctx context.Context, chatID int64) ([]entities.Word, error) {
	words, err := e.enrollments.AllWords(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return words, nil
}

// ForgetWord removes a word from the user's vocabulary. The shared knowledge
// cache keeps the word for other users.
func (e *Engine) ForgetWord(ctx context.Context, chatID int64, rawWord string) error {
	text := entities.NormalizeWord(rawWord)
	if text == "" {
		return ErrNotEnrolled
	}

	err := e.enrollments.Delete(ctx, chatID, text)
	if errors.Is(err, repository.ErrEnrollmentNotFound) {
		return fmt.Errorf("%q: %w", text, ErrNotEnrolled)
	}
	return err
}

// Stats computes the user's activity summary. The streak counts consecutive
// UTC dates with at least one encounter, ending today or yesterday.
func (e *Engine) Stats(ctx context.Context, chatID int64) (Stats, error) {
	var stats Stats

	all, err := e.enrollments.AllWords(ctx, chatID)
	if err != nil {
		return stats, fmt.Errorf("load vocabulary: %w", err)
	}
	stats.TotalWords = len(all)

	today := entities.DateUTC(e.now())

	todayWords, err := e.enrollments.WordsTouchedSince(ctx, chatID, today)
	if err != nil {
		return stats, fmt.Errorf("load today words: %w", err)
	}
	stats.Today = len(todayWords)

	weekWords, err := e.enrollments.WordsTouchedSince(ctx, chatID, today.AddDate(0, 0, -6))
	if err != nil {
		return stats, fmt.Errorf("load week words: %w", err)
	}
	stats.ThisWeek = len(weekWords)

	dates, err := e.enrollments.TouchedDates(ctx, chatID)
	if err != nil {
		return stats, fmt.Errorf("load touched dates: %w", err)
	}
	stats.StreakDays = streak(dates, today)

	return stats, nil
}

// streak counts consecutive days in dates (most recent first) ending at
// today, or at yesterday if today has no activity yet.
func streak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	expect := today
	if !dates[0].Equal(today) {
		expect = today.AddDate(0, 0, -1)
	}

	count := 0
	for _, d := range dates {
		if !d.Equal(expect) {
			break
		}
		count++
		expect = expect.AddDate(0, 0, -1)
	}
	return count
}

// ForEachActiveUser runs fn for every active user. A failing user is logged
// and skipped; a user the messenger reports as gone is deactivated. The sweep
// itself only stops on context cancellation.
func (e *Engine) ForEachActiveUser(ctx context.Context, fn func(ctx context.Context, user entities.User) error) error {
	users, err := e.users.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active users: %w", err)
	}

	for _, user := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn(ctx, user)
		if err == nil {
			continue
		}

		kind := resilience.KindOf(err)
		e.logger.Warn("user sweep failed",
			zap.Int64("chat_id", user.ChatID),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)

		if kind == resilience.KindUnauthorized {
			if derr := e.users.Deactivate(ctx, user.ChatID); derr != nil {
				e.logger.Error("deactivate user", zap.Int64("chat_id", user.ChatID), zap.Error(derr))
			}
		}
	}

	return nil
}
