package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/resilience"
)

const essayAttempts = 3

// Broadcaster runs the daily review sweep: for every active user it sends
// the due words, an essay built from them, and the essay read aloud.
type Broadcaster struct {
	engine    *Engine
	essays    EssayGenerator
	speech    SpeechSynthesizer
	deliverer Deliverer
	caller    *resilience.Caller
	logger    *zap.Logger

	schedule  string
	baseDelay time.Duration
}

func NewBroadcaster(engine *Engine, essays EssayGenerator, speech SpeechSynthesizer, deliverer Deliverer, caller *resilience.Caller, logger *zap.Logger, schedule string, baseDelay time.Duration) *Broadcaster {
	return &Broadcaster{
		engine:    engine,
		essays:    essays,
		speech:    speech,
		deliverer: deliverer,
		caller:    caller,
		logger:    logger,
		schedule:  schedule,
		baseDelay: baseDelay,
	}
}

// Run schedules the sweep on the configured cron expression (UTC) and blocks until
// the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(b.schedule, func() {
		if err := b.Sweep(ctx); err != nil {
			b.logger.Error("broadcast sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule broadcast: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// Sweep broadcasts to every active user once.
func (b *Broadcaster) Sweep(ctx context.Context) error {
	b.logger.Info("broadcast sweep started")

	return b.engine.ForEachActiveUser(ctx, func(ctx context.Context, user entities.User) error {
		return b.broadcastTo(ctx, user)
	})
}

func (b *Broadcaster) broadcastTo(ctx context.Context, user entities.User) error {
	words, err := b.engine.DailyDigest(ctx, user.ChatID)
	if err != nil {
		if errors.Is(err, ErrNoScheduleConfigured) {
			b.logger.Debug("user has no schedule", zap.Int64("chat_id", user.ChatID))
			return nil
		}
		return err
	}
	if len(words) == 0 {
		return nil
	}

	if err := b.deliverer.SendDigest(ctx, user.ChatID, words); err != nil {
		return err
	}

	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}

	essay, err := resilience.Invoke(ctx, b.caller, "generate essay", essayAttempts, b.baseDelay,
		func(ctx context.Context) (string, error) {
			return b.essays.GenerateEssay(ctx, texts, entities.EssayStyle{})
		})
	if err != nil {
		// The digest already went out; the user loses only the extras.
		b.logger.Warn("essay generation failed", zap.Int64("chat_id", user.ChatID), zap.Error(err))
		return nil
	}

	if err := b.deliverer.SendEssay(ctx, user.ChatID, essay); err != nil {
		return err
	}

	audio, err := b.speech.Synthesize(ctx, essay, "en", false)
	if err != nil {
		b.logger.Warn("essay audio failed", zap.Int64("chat_id", user.ChatID), zap.Error(err))
		return nil
	}

	return b.deliverer.SendAudio(ctx, user.ChatID, "essay.mp3", audio)
}
