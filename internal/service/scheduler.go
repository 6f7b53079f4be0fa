package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres/repository"
)

// ErrNoScheduleConfigured means the user has no usable reminder cycle. It is
// distinct from a configured cycle that happens to match no words.
var ErrNoScheduleConfigured = errors.New("no reminder schedule configured")

// Scheduler selects the words a user is responsible for reviewing on a given
// day: those last encountered exactly a cycle offset ago. It holds no state
// of its own.
type Scheduler struct {
	users       UserRepository
	enrollments EnrollmentRepository
}

func NewScheduler(users UserRepository, enrollments EnrollmentRepository) *Scheduler {
	return &Scheduler{users: users, enrollments: enrollments}
}

// DueWords returns the user's review words for the day containing asOf.
// All date arithmetic is on UTC calendar dates, so the result is stable
// within a day regardless of the caller's clock.
func (s *Scheduler) DueWords(ctx context.Context, chatID int64, asOf time.Time) ([]entities.Word, error) {
	cycle, err := s.users.GetReminderCycle(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNoReminderCycle) {
			return nil, ErrNoScheduleConfigured
		}
		return nil, fmt.Errorf("load reminder cycle: %w", err)
	}

	words, err := s.enrollments.WordsTouchedOn(ctx, chatID, cycle.TargetDates(asOf))
	if err != nil {
		return nil, fmt.Errorf("load due words: %w", err)
	}

	return words, nil
}

// WindowWords returns the user's words encountered at or after since. This is
// the today/this-week view and is deliberately a plain timestamp window, not
// the date-exact due logic.
func (s *Scheduler) WindowWords(ctx context.Context, chatID int64, since time.Time) ([]entities.Word, error) {
	words, err := s.enrollments.WordsTouchedSince(ctx, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("load window words: %w", err)
	}

	return words, nil
}
