package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/service"
)

func (h *Handler) handleCommand(ctx context.Context, chatID int64, command, args string) {
	switch command {
	case "start":
		h.reply(ctx, chatID, md(msgWelcome))

	case "stop":
		if err := h.users.Deactivate(ctx, chatID); err != nil {
			h.logger.Error("failed to deactivate user", zap.Int64("chat_id", chatID), zap.Error(err))
			h.reply(ctx, chatID, md(msgInternalError))
			return
		}
		h.reply(ctx, chatID, md(msgStopped))

	case "help":
		h.reply(ctx, chatID, md(msgHelp))

	case "words":
		h.handleWordList(ctx, chatID, "📖 Your vocabulary:", func() ([]entities.Word, error) {
			return h.engine.AllWords(ctx, chatID)
		})

	case "today":
		h.handleWordList(ctx, chatID, "🗓 Added today:", func() ([]entities.Word, error) {
			return h.engine.WindowWords(ctx, chatID, 1)
		})

	case "this_week":
		h.handleWordList(ctx, chatID, "🗓 Added this week:", func() ([]entities.Word, error) {
			return h.engine.WindowWords(ctx, chatID, 7)
		})

	case "responsibility":
		h.handleResponsibility(ctx, chatID)

	case "stats":
		stats, err := h.engine.Stats(ctx, chatID)
		if err != nil {
			h.logger.Error("failed to load stats", zap.Int64("chat_id", chatID), zap.Error(err))
			h.reply(ctx, chatID, md(msgInternalError))
			return
		}
		h.reply(ctx, chatID, renderStats(stats))

	case "reminder":
		cycle, err := h.users.ReminderCycle(ctx, chatID)
		if err != nil {
			if errors.Is(err, service.ErrNoScheduleConfigured) {
				h.reply(ctx, chatID, md(msgNoSchedule))
				return
			}
			h.logger.Error("failed to load reminder cycle", zap.Int64("chat_id", chatID), zap.Error(err))
			h.reply(ctx, chatID, md(msgInternalError))
			return
		}
		h.reply(ctx, chatID, renderCycle(cycle))

	case "set_reminders":
		h.handleSetReminders(ctx, chatID, args)

	case "define":
		h.handleDefine(ctx, chatID, args, false)

	case "tr":
		h.handleDefine(ctx, chatID, args, true)

	case "pronounce":
		h.handlePronounce(ctx, chatID, args)

	case "essay":
		h.handleEssay(ctx, chatID, args)

	case "delete":
		h.handleDelete(ctx, chatID, args)

	default:
		h.reply(ctx, chatID, md(msgUnknownCommand))
	}
}

// handleWord is the plain-text path: any non-command text is treated as a
// word or phrase to learn.
func (h *Handler) handleWord(ctx context.Context, chatID int64, text string) {
	word, err := h.engine.RecordEncounter(ctx, chatID, text)
	if err != nil {
		h.replyLookupError(ctx, chatID, text, err)
		return
	}

	h.reply(ctx, chatID, renderWord(*word))
}

func (h *Handler) handleWordList(ctx context.Context, chatID int64, header string, load func() ([]entities.Word, error)) {
	words, err := load()
	if err != nil {
		h.logger.Error("failed to load word list", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, chatID, md(msgInternalError))
		return
	}
	if len(words) == 0 {
		h.reply(ctx, chatID, md(msgNoWords))
		return
	}

	h.reply(ctx, chatID, renderWordList(header, words))
}

func (h *Handler) handleResponsibility(ctx context.Context, chatID int64) {
	words, err := h.engine.DailyDigest(ctx, chatID)
	if err != nil {
		if errors.Is(err, service.ErrNoScheduleConfigured) {
			h.reply(ctx, chatID, md(msgNoSchedule))
			return
		}
		h.logger.Error("failed to load digest", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, chatID, md(msgInternalError))
		return
	}
	if len(words) == 0 {
		h.reply(ctx, chatID, md(msgNothingDue))
		return
	}

	h.reply(ctx, chatID, renderDigest(words))
}

func (h *Handler) handleSetReminders(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 5 {
		h.reply(ctx, chatID, md(msgSetRemindersUsage))
		return
	}

	var cycle entities.ReminderCycle
	for i, f := range fields {
		offset, err := strconv.Atoi(f)
		if err != nil || offset < 0 {
			h.reply(ctx, chatID, md(msgSetRemindersUsage))
			return
		}
		cycle[i] = offset
	}

	if err := h.users.SetReminderCycle(ctx, chatID, cycle); err != nil {
		h.logger.Error("failed to set reminder cycle", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, chatID, md(msgInternalError))
		return
	}

	h.reply(ctx, chatID, md(msgRemindersUpdated))
}

func (h *Handler) handleDefine(ctx context.Context, chatID int64, args string, translationOnly bool) {
	if strings.TrimSpace(args) == "" {
		h.reply(ctx, chatID, md(msgUnknownWord))
		return
	}

	word, err := h.engine.Define(ctx, args)
	if err != nil {
		h.replyLookupError(ctx, chatID, args, err)
		return
	}

	if translationOnly {
		if len(word.Knowledge.Translations) == 0 {
			h.reply(ctx, chatID, md(msgNoTranslation))
			return
		}
		h.reply(ctx, chatID, bold(word.Text)+" "+md("— "+strings.Join(word.Knowledge.Translations, ", ")))
		return
	}

	h.reply(ctx, chatID, renderWord(*word))
}

func (h *Handler) handlePronounce(ctx context.Context, chatID int64, args string) {
	slow := false
	text := strings.TrimSpace(args)
	if strings.HasPrefix(text, "-slow") {
		slow = true
		text = strings.TrimSpace(strings.TrimPrefix(text, "-slow"))
	}
	if text == "" {
		h.reply(ctx, chatID, md(msgPronounceUsage))
		return
	}

	audio, err := h.speech.Synthesize(ctx, text, "en", slow)
	if err != nil {
		h.logger.Warn("pronunciation failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, chatID, md(msgAudioUnavailable))
		return
	}

	if err := h.sender.SendAudio(ctx, chatID, "pronounce.mp3", audio); err != nil {
		h.logger.Error("failed to send audio", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) handleEssay(ctx context.Context, chatID int64, args string) {
	style, theme := parseEssayStyle(args)
	style.Theme = theme

	words, err := h.engine.DailyDigest(ctx, chatID)
	if err != nil {
		if errors.Is(err, service.ErrNoScheduleConfigured) {
			h.reply(ctx, chatID, md(msgNoSchedule))
			return
		}
		h.logger.Error("failed to load digest", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, chatID, md(msgInternalError))
		return
	}
	if len(words) == 0 {
		h.reply(ctx, chatID, md(msgNothingDue))
		return
	}

	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}

	essay, err := h.essays.GenerateEssay(ctx, texts, style)
	if err != nil {
		h.logger.Warn("essay generation failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, chatID, md(msgEssayUnavailable))
		return
	}

	if err := h.sender.SendEssay(ctx, chatID, essay); err != nil {
		h.logger.Error("failed to send essay", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	audio, err := h.speech.Synthesize(ctx, essay, "en", style.Slow)
	if err != nil {
		h.logger.Warn("essay audio failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	if err := h.sender.SendAudio(ctx, chatID, "essay.mp3", audio); err != nil {
		h.logger.Error("failed to send audio", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) handleDelete(ctx context.Context, chatID int64, args string) {
	if strings.TrimSpace(args) == "" {
		h.reply(ctx, chatID, md(msgNotInVocabulary))
		return
	}

	err := h.engine.ForgetWord(ctx, chatID, args)
	if err != nil {
		if errors.Is(err, service.ErrNotEnrolled) {
			h.reply(ctx, chatID, md(msgNotInVocabulary))
			return
		}
		h.logger.Error("failed to delete word", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, chatID, md(msgInternalError))
		return
	}

	h.reply(ctx, chatID, md(msgWordDeleted))
}

func (h *Handler) replyLookupError(ctx context.Context, chatID int64, text string, err error) {
	if errors.Is(err, service.ErrWordNotFound) {
		h.reply(ctx, chatID, md(msgUnknownWord))
		return
	}

	h.logger.Warn("word lookup failed",
		zap.Int64("chat_id", chatID),
		zap.String("text", text),
		zap.Error(err),
	)
	h.reply(ctx, chatID, md(msgDictionaryBusy))
}

// parseEssayStyle splits leading -flags off the argument string; whatever
// remains is the theme. Unknown flags are ignored.
func parseEssayStyle(args string) (entities.EssayStyle, string) {
	var style entities.EssayStyle

	fields := strings.Fields(args)
	i := 0
	for ; i < len(fields); i++ {
		if !strings.HasPrefix(fields[i], "-") {
			break
		}

		switch flag := strings.TrimPrefix(fields[i], "-"); flag {
		case "story", "essay", "paragraph":
			style.Kind = flag
		case "very-short", "short", "medium", "long", "very-long":
			style.Length = flag
		case "A1", "A2", "B1", "B2", "C1", "C2":
			style.Level = flag
		case "slow":
			style.Slow = true
		}
	}

	return style, strings.Join(fields[i:], " ")
}
