package repository

import (
	"context"
	"fmt"

	"github.com/komendev/vocabbot/internal/infra/postgres"
)

// MessageRepository keeps an audit log of incoming messages.
type MessageRepository struct {
	db postgres.DBTX
}

// NewMessageRepository creates a new MessageRepository with the provided database pool.
func NewMessageRepository(db postgres.DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

// Save records an incoming message.
func (r *MessageRepository) Save(ctx context.Context, chatID int64, text string) error {
	query := `INSERT INTO messages (chat_id, message) VALUES ($1, $2)`

	_, err := r.db.Exec(ctx, query, chatID, text)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	return nil
}
