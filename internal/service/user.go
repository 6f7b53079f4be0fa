package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres/repository"
)

// UserService manages registration and reminder cycle configuration.
type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates or reactivates the user and reports whether they are new.
func (s *UserService) Register(ctx context.Context, chatID int64, firstName, lastName, username string) (bool, error) {
	created, err := s.users.Save(ctx, entities.NewUser(chatID, firstName, lastName, username))
	if err != nil {
		return false, fmt.Errorf("register user: %w", err)
	}
	return created, nil
}

// Deactivate stops broadcasts for the user but keeps their vocabulary.
func (s *UserService) Deactivate(ctx context.Context, chatID int64) error {
	if err := s.users.Deactivate(ctx, chatID); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

// ReminderCycle returns the user's configured review offsets.
func (s *UserService) ReminderCycle(ctx context.Context, chatID int64) (entities.ReminderCycle, error) {
	cycle, err := s.users.GetReminderCycle(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNoReminderCycle) {
			return cycle, ErrNoScheduleConfigured
		}
		return cycle, fmt.Errorf("load reminder cycle: %w", err)
	}
	return cycle, nil
}

// SetReminderCycle validates and stores new review offsets.
func (s *UserService) SetReminderCycle(ctx context.Context, chatID int64, cycle entities.ReminderCycle) error {
	if err := cycle.Validate(); err != nil {
		return err
	}
	if err := s.users.SetReminderCycle(ctx, chatID, cycle); err != nil {
		return fmt.Errorf("set reminder cycle: %w", err)
	}
	return nil
}
