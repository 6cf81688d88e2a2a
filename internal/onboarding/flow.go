// Package onboarding collects the delivery configuration through a short
// sequential chat exchange.
package onboarding

import (
	"strings"

	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/telegram-motivation-bot/internal/store"
	"github.com/iamwavecut/telegram-motivation-bot/resources/consts"
)

// Step asks for one value and writes the reply into the record.
type Step struct {
	Name   string
	Prompt string
	Apply  func(rec *store.Record, text string)
}

// Flow is an ordered list of steps. A flow without steps completes on /start.
type Flow struct {
	Intro     string
	Steps     []Step
	Done      string
	Cancelled string
}

// ProxySkipTokens mean "no proxy" at the proxy step, compared case-insensitively.
var ProxySkipTokens = []string{"нет", "пропустить", "no", "skip"}

// DialogFlow collects credentials, proxy and schedule time.
func DialogFlow() Flow {
	return Flow{
		Intro: consts.StrSetupIntro,
		Steps: []Step{
			{
				Name:   "telegram_token",
				Prompt: consts.StrAskToken,
				Apply:  func(rec *store.Record, text string) { rec.TelegramToken = text },
			},
			{
				Name:   "gemini_api_key",
				Prompt: consts.StrAskGeminiKey,
				Apply:  func(rec *store.Record, text string) { rec.APIKey = text },
			},
			{
				Name:   "proxy_url",
				Prompt: consts.StrAskProxy,
				Apply:  func(rec *store.Record, text string) { rec.ProxyURL = NormalizeProxy(text) },
			},
			{
				Name:   "schedule_time",
				Prompt: consts.StrAskScheduleTime,
				Apply:  func(rec *store.Record, text string) { rec.ScheduleTime = text },
			},
		},
		Done:      consts.StrSetupDone,
		Cancelled: consts.StrSetupCancelled,
	}
}

// StartFlow only records who sent /start.
func StartFlow() Flow {
	return Flow{
		Done:      consts.StrWelcome,
		Cancelled: consts.StrSetupCancelled,
	}
}

// NormalizeProxy returns nil for a skip token and the text as is otherwise.
func NormalizeProxy(text string) *string {
	if tool.In(strings.ToLower(strings.TrimSpace(text)), ProxySkipTokens) {
		return nil
	}
	return &text
}
