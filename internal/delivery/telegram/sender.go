package telegram

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/resilience"
)

// botClient is the slice of tgbotapi.BotAPI the sender needs.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers outbound messages with retries and length-safe splitting.
// It implements service.Deliverer.
type Sender struct {
	bot    botClient
	caller *resilience.Caller
	logger *zap.Logger

	maxAttempts  int
	baseDelay    time.Duration
	messageLimit int
}

func NewSender(bot botClient, caller *resilience.Caller, logger *zap.Logger, maxAttempts int, baseDelay time.Duration, messageLimit int) *Sender {
	return &Sender{
		bot:          bot,
		caller:       caller,
		logger:       logger,
		maxAttempts:  maxAttempts,
		baseDelay:    baseDelay,
		messageLimit: messageLimit,
	}
}

// SendText sends already-escaped MarkdownV2 text, splitting it when it
// exceeds the message limit.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	for _, part := range splitMessages(text, s.messageLimit) {
		if err := s.sendOne(ctx, newMessage(chatID, part)); err != nil {
			return err
		}
	}
	return nil
}

// splitMessages cuts text at line boundaries first. The renderers never open
// a MarkdownV2 entity on one line and close it on another, so line-aligned
// messages always carry balanced entities. Only a single line wider than the
// limit falls back to word-boundary chunking.
func splitMessages(text string, limit int) []string {
	if limit < 1 {
		limit = 1
	}

	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for line := range strings.Lines(text) {
		line = strings.TrimSuffix(line, "\n")
		n := len([]rune(line))

		if n > limit {
			flush()
			parts = append(parts, resilience.Split(line, limit)...)
			continue
		}
		if curLen > 0 && curLen+1+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteString("\n")
			curLen++
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()

	return parts
}

func (s *Sender) SendDigest(ctx context.Context, chatID int64, words []entities.Word) error {
	return s.SendText(ctx, chatID, renderDigest(words))
}

func (s *Sender) SendEssay(ctx context.Context, chatID int64, essay string) error {
	return s.SendText(ctx, chatID, md(essay))
}

func (s *Sender) SendAudio(ctx context.Context, chatID int64, name string, audio []byte) error {
	a := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: name, Bytes: audio})
	return s.sendOne(ctx, a)
}

func (s *Sender) sendOne(ctx context.Context, c tgbotapi.Chattable) error {
	return s.caller.Do(ctx, "telegram send", s.maxAttempts, s.baseDelay, func(ctx context.Context) error {
		_, err := s.bot.Send(c)
		return classify(err)
	})
}

// classify maps a Telegram API failure onto the retry taxonomy: blocked or
// deleted recipients are permanent, flood limits carry the advertised wait,
// and everything network-shaped is worth another try.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return resilience.Unauthorized(err)
		case apiErr.Code == 429:
			wait := time.Duration(apiErr.RetryAfter) * time.Second
			if wait <= 0 {
				wait = 30 * time.Second
			}
			return resilience.RateLimited(err, wait)
		case apiErr.Code == 400:
			return resilience.Malformed(err)
		case apiErr.Code >= 500:
			return resilience.Transient(err)
		default:
			return err
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Transient(err)
	}

	return resilience.Transient(err)
}
