package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/resilience"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	errs []error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if len(b.errs) > 0 {
		var err error
		err, b.errs = b.errs[0], b.errs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func newTestSender(bot *fakeBot, limit int) *Sender {
	caller := resilience.New(resilience.NewZapObserver(zap.NewNop()))
	return NewSender(bot, caller, zap.NewNop(), 3, 0, limit)
}

func sentTexts(t *testing.T, bot *fakeBot) []string {
	t.Helper()
	var texts []string
	for _, c := range bot.sent {
		msg, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok)
		texts = append(texts, msg.Text)
	}
	return texts
}

func TestSendTextSplitsLongMessages(t *testing.T) {
	bot := &fakeBot{}
	sender := newTestSender(bot, 50)

	text := strings.Repeat("vocabulary ", 20)
	require.NoError(t, sender.SendText(context.Background(), 42, text))

	texts := sentTexts(t, bot)
	require.Greater(t, len(texts), 1)
	for _, part := range texts {
		assert.LessOrEqual(t, len([]rune(part)), 50)
		assert.NotContains(t, part, "vocabular ")
	}
}

func TestSendTextKeepsEntitiesBalancedAcrossMessages(t *testing.T) {
	bot := &fakeBot{}
	sender := newTestSender(bot, 60)

	words := make([]entities.Word, 6)
	for i := range words {
		words[i] = entities.Word{
			Text: "sesquipedalian",
			Knowledge: entities.WordKnowledge{
				Definitions: []string{"given to using long words"},
				Examples:    []string{"a sesquipedalian lecture on brevity"},
			},
		}
	}
	require.NoError(t, sender.SendDigest(context.Background(), 42, words))

	texts := sentTexts(t, bot)
	require.Greater(t, len(texts), 1)
	for _, part := range texts {
		assert.LessOrEqual(t, len([]rune(part)), 60)
		// A message with an odd number of markers would be rejected by the
		// API as an unclosed entity.
		assert.Zero(t, strings.Count(part, "*")%2, "unbalanced bold in %q", part)
		assert.Zero(t, strings.Count(part, "_")%2, "unbalanced italic in %q", part)
	}
}

func TestSplitMessagesPrefersLineBoundaries(t *testing.T) {
	parts := splitMessages("*one*\n_two_\n*three*", 12)

	require.Equal(t, []string{"*one*\n_two_", "*three*"}, parts)
}

func TestSendTextRetriesTransientFailures(t *testing.T) {
	bot := &fakeBot{errs: []error{errors.New("connection reset")}}
	sender := newTestSender(bot, 4000)

	require.NoError(t, sender.SendText(context.Background(), 42, "hello"))
	require.Len(t, bot.sent, 1)
}

func TestSendTextStopsOnBlockedRecipient(t *testing.T) {
	bot := &fakeBot{errs: []error{
		&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"},
	}}
	sender := newTestSender(bot, 4000)

	err := sender.SendText(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Equal(t, resilience.KindUnauthorized, resilience.KindOf(err))
	assert.Empty(t, bot.sent)
}

func TestSendDigestProducesMarkdown(t *testing.T) {
	bot := &fakeBot{}
	sender := newTestSender(bot, 4000)

	words := []entities.Word{{Text: "alpha", Knowledge: entities.WordKnowledge{Definitions: []string{"first"}}}}
	require.NoError(t, sender.SendDigest(context.Background(), 42, words))

	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
	assert.Contains(t, msg.Text, "*alpha*")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want resilience.Kind
	}{
		{name: "nil"},
		{name: "blocked", err: &tgbotapi.Error{Code: 403}, want: resilience.KindUnauthorized},
		{name: "bad token", err: &tgbotapi.Error{Code: 401}, want: resilience.KindUnauthorized},
		{name: "bad request", err: &tgbotapi.Error{Code: 400}, want: resilience.KindMalformed},
		{name: "server error", err: &tgbotapi.Error{Code: 502}, want: resilience.KindTransient},
		{name: "network", err: errors.New("dial tcp: timeout"), want: resilience.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.want, resilience.KindOf(got))
		})
	}
}

func TestClassifyFloodWaitCarriesRetryAfter(t *testing.T) {
	err := classify(&tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests: retry after 17",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 17},
	})

	var ce *resilience.ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, resilience.KindRateLimited, ce.Kind)
	assert.Equal(t, 17*time.Second, ce.RetryAfter)
}
