// Package delivery sends the daily phrase to the configured chat.
package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/iamwavecut/tool"
	"github.com/mr-linch/go-tg"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/telegram-motivation-bot/internal/store"
)

type PhraseSource interface {
	Generate(ctx context.Context, apiKey string) string
}

type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type TelegramSender struct {
	client *tg.Client
}

func NewTelegramSender(client *tg.Client) *TelegramSender {
	return &TelegramSender{client: client}
}

func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string) error {
	return s.client.SendMessage(tg.ChatID(chatID), text).DoVoid(ctx)
}

type Job struct {
	store       store.Store
	phrases     PhraseSource
	sender      Sender
	fallbackKey string
}

// NewJob builds the delivery job. fallbackKey is used when the stored record
// carries no API key.
func NewJob(st store.Store, phrases PhraseSource, sender Sender, fallbackKey string) *Job {
	return &Job{
		store:       st,
		phrases:     phrases,
		sender:      sender,
		fallbackKey: fallbackKey,
	}
}

// Run makes a single delivery attempt. Failures are logged and never retried.
func (j *Job) Run(ctx context.Context) {
	logger := log.WithField("run_id", uuid.New().String())

	rec, err := j.store.Load()
	if err != nil {
		logger.WithError(err).Warn("delivery skipped: no configuration")
		return
	}
	chatID := rec.Recipient()
	apiKey := tool.NonZero(rec.APIKey, j.fallbackKey)
	if chatID == 0 || apiKey == "" {
		logger.WithFields(log.Fields{
			"has_chat_id": chatID != 0,
			"has_api_key": apiKey != "",
		}).Error("delivery skipped: chat id or api key missing in configuration")
		return
	}

	phrase := j.phrases.Generate(ctx, apiKey)
	if err := j.sender.Send(ctx, chatID, phrase); err != nil {
		logger.WithError(err).WithField("chat_id", chatID).Error("delivery failed")
		return
	}
	logger.WithField("chat_id", chatID).Info("motivation delivered")
}
