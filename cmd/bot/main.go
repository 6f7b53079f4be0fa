package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/komendev/vocabbot/internal/ai"
	"github.com/komendev/vocabbot/internal/config"
	"github.com/komendev/vocabbot/internal/delivery/telegram"
	"github.com/komendev/vocabbot/internal/dictionary"
	"github.com/komendev/vocabbot/internal/infra/postgres"
	"github.com/komendev/vocabbot/internal/infra/postgres/repository"
	"github.com/komendev/vocabbot/internal/logger"
	"github.com/komendev/vocabbot/internal/resilience"
	"github.com/komendev/vocabbot/internal/service"
	"github.com/komendev/vocabbot/internal/speech"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zl.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		zl.Fatal("apply migrations", zap.Error(err))
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zl.Fatal("create telegram bot", zap.Error(err))
	}
	zl.Info("authorized", zap.String("username", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(botCommands()...)); err != nil {
		zl.Warn("set bot commands", zap.Error(err))
	}

	wordRepo := repository.NewWordRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	caller := resilience.New(resilience.NewZapObserver(zl))

	dict := dictionary.NewClient(cfg.Dictionary.Timeout, zl)
	essays, err := ai.NewEssayWriter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, zl)
	if err != nil {
		zl.Fatal("create essay writer", zap.Error(err))
	}
	tts := speech.NewSynthesizer(cfg.Dictionary.Timeout)

	cache := service.NewWordCache(wordRepo, dict, caller, cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay)
	scheduler := service.NewScheduler(userRepo, enrollmentRepo)
	engine := service.NewEngine(cache, scheduler, userRepo, enrollmentRepo, zl)
	users := service.NewUserService(userRepo)

	sender := telegram.NewSender(bot, caller, zl, cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, cfg.MessageLimit)
	handler := telegram.NewHandler(bot, sender, zl, engine, users, essays, tts, messageRepo)

	broadcaster := service.NewBroadcaster(engine, essays, tts, sender, caller, zl, cfg.BroadcastCron, cfg.Retry.BaseDelay)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return handler.Run(ctx) })
	g.Go(func() error { return broadcaster.Run(ctx) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		zl.Fatal("bot stopped", zap.Error(err))
	}
	zl.Info("shutdown complete")
}

func botCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "help", Description: "Show all commands"},
		{Command: "words", Description: "Your full vocabulary"},
		{Command: "today", Description: "Words added today"},
		{Command: "this_week", Description: "Words added this week"},
		{Command: "responsibility", Description: "Words to review today"},
		{Command: "stats", Description: "Totals and streak"},
		{Command: "reminder", Description: "Your review schedule"},
		{Command: "set_reminders", Description: "Set review offsets (usage: /set_reminders 0 1 3 6 14)"},
		{Command: "define", Description: "Look a word up without saving it"},
		{Command: "tr", Description: "Translation only"},
		{Command: "pronounce", Description: "Hear text spoken (-slow for slow speech)"},
		{Command: "essay", Description: "An essay from today's review words"},
		{Command: "delete", Description: "Remove a word from your vocabulary"},
		{Command: "stop", Description: "Pause daily reminders"},
	}
}
