package handlers

import (
	"context"
	"strings"

	"github.com/iamwavecut/tool"
	"github.com/mr-linch/go-tg"
	"github.com/mr-linch/go-tg/tgb"

	"github.com/iamwavecut/telegram-motivation-bot/internal/config"
	"github.com/iamwavecut/telegram-motivation-bot/internal/onboarding"
)

// Start begins the onboarding flow. With an empty flow it saves the sender
// right away and answers with the welcome text.
func Start(dialog *onboarding.Dialog) func(ctx context.Context, msg *tgb.MessageUpdate) error {
	return func(ctx context.Context, msg *tgb.MessageUpdate) error {
		reply, err := dialog.Begin(int64(msg.Chat.ID), language(msg.From))
		if err != nil {
			return err
		}
		return msg.Answer(reply).DoVoid(ctx)
	}
}

// Reply routes free text to the open onboarding session, if any. Messages
// without text (stickers, photos, voice) and commands are ignored.
func Reply(dialog *onboarding.Dialog) func(ctx context.Context, msg *tgb.MessageUpdate) error {
	return func(ctx context.Context, msg *tgb.MessageUpdate) error {
		if msg.Text == "" || isCommand(msg.Text) {
			return nil
		}
		reply, handled, err := dialog.Reply(int64(msg.Chat.ID), msg.Text, language(msg.From))
		if err != nil || !handled {
			return err
		}
		return msg.Answer(reply).DoVoid(ctx)
	}
}

func Cancel(dialog *onboarding.Dialog) func(ctx context.Context, msg *tgb.MessageUpdate) error {
	return func(ctx context.Context, msg *tgb.MessageUpdate) error {
		reply, ok := dialog.Cancel(int64(msg.Chat.ID), language(msg.From))
		if !ok {
			return nil
		}
		return msg.Answer(reply).DoVoid(ctx)
	}
}

func language(from *tg.User) string {
	if from == nil {
		return config.Get().DefaultLanguage
	}
	return tool.NonZero(from.LanguageCode, config.Get().DefaultLanguage)
}

func isCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}
