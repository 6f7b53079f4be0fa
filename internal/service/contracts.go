package service

import (
	"context"
	"time"

	"github.com/komendev/vocabbot/internal/domain/entities"
)

type WordRepository interface {
	InsertIfAbsent(ctx context.Context, text string, knowledge entities.WordKnowledge) (*entities.Word, error)
	GetByText(ctx context.Context, text string) (*entities.Word, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	GetActive(ctx context.Context) ([]entities.User, error)
	Deactivate(ctx context.Context, chatID int64) error
	GetReminderCycle(ctx context.Context, chatID int64) (entities.ReminderCycle, error)
	SetReminderCycle(ctx context.Context, chatID int64, cycle entities.ReminderCycle) error
}

type EnrollmentRepository interface {
	Upsert(ctx context.Context, chatID, wordID int64, touchedAt time.Time) error
	Delete(ctx context.Context, chatID int64, text string) error
	WordsTouchedOn(ctx context.Context, chatID int64, dates []time.Time) ([]entities.Word, error)
	WordsTouchedSince(ctx context.Context, chatID int64, since time.Time) ([]entities.Word, error)
	AllWords(ctx context.Context, chatID int64) ([]entities.Word, error)
	TouchedDates(ctx context.Context, chatID int64) ([]time.Time, error)
}

type MessageRepository interface {
	Save(ctx context.Context, chatID int64, text string) error
}

// KnowledgeProvider looks a word up in an external dictionary.
type KnowledgeProvider interface {
	Lookup(ctx context.Context, word string) (entities.WordKnowledge, error)
}

// EssayGenerator writes a short text built around the given words.
type EssayGenerator interface {
	GenerateEssay(ctx context.Context, words []string, style entities.EssayStyle) (string, error)
}

// SpeechSynthesizer renders text to MP3 audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang string, slow bool) ([]byte, error)
}

// Deliverer pushes outbound content to a chat.
type Deliverer interface {
	SendDigest(ctx context.Context, chatID int64, words []entities.Word) error
	SendEssay(ctx context.Context, chatID int64, essay string) error
	SendAudio(ctx context.Context, chatID int64, name string, audio []byte) error
}
