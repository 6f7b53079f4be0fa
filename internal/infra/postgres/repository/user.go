package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNoReminderCycle = errors.New("reminder cycle not configured")
)

// UserRepository provides access to user data in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database pool.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a new user with the default reminder cycle or reactivates an
// existing one. A returning user keeps the cycle they configured.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) (bool, error) {
	cycle := entities.DefaultReminderCycle()

	query := `
		INSERT INTO users (
			chat_id, first_name, last_name, username, is_active,
			first_reminder, second_reminder, third_reminder, fourth_reminder, fifth_reminder
		)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $8, $9)
		ON CONFLICT (chat_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			is_active = TRUE
		RETURNING (xmax = 0) AS created
	`

	var created bool
	err := r.db.QueryRow(ctx, query,
		user.ChatID, user.FirstName, user.LastName, user.Username,
		cycle[0], cycle[1], cycle[2], cycle[3], cycle[4],
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}

	return created, nil
}

// GetActive retrieves all users who have not blocked the bot.
func (r *UserRepository) GetActive(ctx context.Context) ([]entities.User, error) {
	query := `
		SELECT chat_id, first_name, last_name, username, is_active, created_at
		FROM users
		WHERE is_active
		ORDER BY chat_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active users: %w", err)
	}
	defer rows.Close()

	var users []entities.User
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(&u.ChatID, &u.FirstName, &u.LastName, &u.Username, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Deactivate marks a user inactive so broadcasts skip them.
func (r *UserRepository) Deactivate(ctx context.Context, chatID int64) error {
	query := `UPDATE users SET is_active = FALSE WHERE chat_id = $1`

	result, err := r.db.Exec(ctx, query, chatID)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetReminderCycle retrieves the user's five review offsets. A missing user or
// an unset column yields ErrNoReminderCycle.
func (r *UserRepository) GetReminderCycle(ctx context.Context, chatID int64) (entities.ReminderCycle, error) {
	query := `
		SELECT first_reminder, second_reminder, third_reminder, fourth_reminder, fifth_reminder
		FROM users
		WHERE chat_id = $1
	`

	var offsets [5]pgtype.Int4
	err := r.db.QueryRow(ctx, query, chatID).Scan(
		&offsets[0], &offsets[1], &offsets[2], &offsets[3], &offsets[4],
	)

	var cycle entities.ReminderCycle
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cycle, ErrNoReminderCycle
		}
		return cycle, fmt.Errorf("get reminder cycle: %w", err)
	}

	for i, offset := range offsets {
		if !offset.Valid {
			return cycle, ErrNoReminderCycle
		}
		cycle[i] = int(offset.Int32)
	}

	return cycle, nil
}

// SetReminderCycle replaces the user's five review offsets.
func (r *UserRepository) SetReminderCycle(ctx context.Context, chatID int64, cycle entities.ReminderCycle) error {
	query := `
		UPDATE users
		SET first_reminder = $1, second_reminder = $2, third_reminder = $3,
		    fourth_reminder = $4, fifth_reminder = $5
		WHERE chat_id = $6
	`

	result, err := r.db.Exec(ctx, query, cycle[0], cycle[1], cycle[2], cycle[3], cycle[4], chatID)
	if err != nil {
		return fmt.Errorf("set reminder cycle: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
