package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/service"
)

type EngineService interface {
	RecordEncounter(ctx context.Context, chatID int64, rawWord string) (*entities.Word, error)
	Define(ctx context.Context, rawWord string) (*entities.Word, error)
	DailyDigest(ctx context.Context, chatID int64) ([]entities.Word, error)
	WindowWords(ctx context.Context, chatID int64, days int) ([]entities.Word, error)
	AllWords(ctx context.Context, chatID int64) ([]entities.Word, error)
	ForgetWord(ctx context.Context, chatID int64, rawWord string) error
	Stats(ctx context.Context, chatID int64) (service.Stats, error)
}

type UserService interface {
	Register(ctx context.Context, chatID int64, firstName, lastName, username string) (bool, error)
	Deactivate(ctx context.Context, chatID int64) error
	ReminderCycle(ctx context.Context, chatID int64) (entities.ReminderCycle, error)
	SetReminderCycle(ctx context.Context, chatID int64, cycle entities.ReminderCycle) error
}

type MessageAudit interface {
	Save(ctx context.Context, chatID int64, text string) error
}

type Handler struct {
	bot      *tgbotapi.BotAPI
	sender   *Sender
	logger   *zap.Logger
	engine   EngineService
	users    UserService
	essays   service.EssayGenerator
	speech   service.SpeechSynthesizer
	messages MessageAudit
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	sender *Sender,
	logger *zap.Logger,
	engine EngineService,
	users UserService,
	essays service.EssayGenerator,
	speech service.SpeechSynthesizer,
	messages MessageAudit,
) *Handler {
	return &Handler{
		bot:      bot,
		sender:   sender,
		logger:   logger,
		engine:   engine,
		users:    users,
		essays:   essays,
		speech:   speech,
		messages: messages,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)

	if err := h.messages.Save(ctx, chatID, update.Message.Text); err != nil {
		h.logger.Error("failed to save message", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	if from := update.Message.From; from != nil && update.Message.Command() != "stop" {
		_, err := h.users.Register(ctx, chatID, from.FirstName, from.LastName, from.UserName)
		if err != nil {
			h.logger.Error("failed to register user", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}

	if update.Message.IsCommand() {
		h.handleCommand(ctx, chatID, update.Message.Command(), update.Message.CommandArguments())
		return
	}

	h.handleWord(ctx, chatID, update.Message.Text)
}

// reply sends text and logs a failure instead of surfacing it; inbound
// handling never depends on outbound delivery.
func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendText(ctx, chatID, text); err != nil {
		h.logger.Error("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
