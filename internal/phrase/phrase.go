// Package phrase asks a generative-text service for the daily motivational phrase.
package phrase

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iamwavecut/telegram-motivation-bot/resources/consts"
)

const (
	Prompt = "Напиши одну короткую, но очень сильную и оригинальную мотивационную фразу на русском языке. " +
		"Она должна вдохновлять и заряжать энергией на весь день. Не используй банальные цитаты."
	Fallback = "Никогда не сдавайся, и ты увидишь, как сдаются другие. (Резервная фраза)"
)

var (
	ErrEmptyResponse   = errors.New("empty response")
	ErrUnknownProvider = errors.New("unknown phrase provider")
	ErrMissingAPIKey   = errors.New("missing api key")
)

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Factory builds a Completer bound to one API key.
type Factory func(ctx context.Context, apiKey string) (Completer, error)

// NewFactory returns the Factory for the named provider: "gemini" or "openai".
func NewFactory(provider, model string) (Factory, error) {
	switch provider {
	case "", "gemini":
		return func(ctx context.Context, apiKey string) (Completer, error) {
			return NewGeminiCompleter(ctx, apiKey, model)
		}, nil
	case "openai":
		return func(_ context.Context, apiKey string) (Completer, error) {
			return NewOpenAICompleter(apiKey, model), nil
		}, nil
	default:
		return nil, ErrUnknownProvider
	}
}

type Generator struct {
	factory Factory
	limiter *rate.Limiter
}

func NewGenerator(factory Factory) *Generator {
	return &Generator{
		factory: factory,
		limiter: rate.NewLimiter(rate.Every(consts.MinTimeBetweenRequests), 1),
	}
}

// Generate returns the upstream text verbatim. Any failure yields Fallback.
func (g *Generator) Generate(ctx context.Context, apiKey string) string {
	text, err := g.generate(ctx, apiKey)
	if err != nil {
		log.WithError(err).Error("phrase generation failed, using fallback")
		return Fallback
	}
	log.Info("phrase generated")
	return text
}

func (g *Generator) generate(ctx context.Context, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	completer, err := g.factory(ctx, apiKey)
	if err != nil {
		return "", err
	}
	text, err := completer.Complete(ctx, Prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
