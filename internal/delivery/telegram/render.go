package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/service"
)

const (
	maxDefinitions = 3
	maxExamples    = 2
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

func renderWord(w entities.Word) string {
	var b strings.Builder
	b.WriteString(bold(w.Text))
	b.WriteString("\n")

	for i, def := range w.Knowledge.Definitions {
		if i == maxDefinitions {
			break
		}
		b.WriteString(fmt.Sprintf("%s %s\n", md("•"), md(def)))
	}

	for i, ex := range w.Knowledge.Examples {
		if i == maxExamples {
			break
		}
		b.WriteString(fmt.Sprintf("  %s\n", italic(ex)))
	}

	if len(w.Knowledge.Translations) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", md("🇹🇷"), md(strings.Join(w.Knowledge.Translations, ", "))))
	}

	return b.String()
}

func renderDigest(words []entities.Word) string {
	var b strings.Builder
	b.WriteString(md(msgDigestHeader))
	b.WriteString("\n\n")
	for _, w := range words {
		b.WriteString(renderWord(w))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderWordList(header string, words []entities.Word) string {
	var b strings.Builder
	b.WriteString(md(header))
	b.WriteString("\n\n")
	for i, w := range words {
		b.WriteString(fmt.Sprintf("%s %s\n", md(fmt.Sprintf("%d.", i+1)), bold(w.Text)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStats(stats service.Stats) string {
	lines := []string{
		"📊 Your vocabulary",
		"",
		fmt.Sprintf("Total words: %d", stats.TotalWords),
		fmt.Sprintf("Added today: %d", stats.Today),
		fmt.Sprintf("Added this week: %d", stats.ThisWeek),
		fmt.Sprintf("Streak: %d day(s)", stats.StreakDays),
	}
	return md(strings.Join(lines, "\n"))
}

func renderCycle(cycle entities.ReminderCycle) string {
	offsets := make([]string, len(cycle))
	for i, d := range cycle {
		offsets[i] = fmt.Sprintf("%d", d)
	}
	return md(fmt.Sprintf("Your review offsets in days: %s\nOffset 0 covers words added today.", strings.Join(offsets, ", ")))
}
