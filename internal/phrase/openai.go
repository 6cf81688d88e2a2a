package phrase

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	openAIMaxTokens   = 200
	openAITemperature = 1
	openAIN           = 1
)

type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAICompleter{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   openAIMaxTokens,
		Temperature: openAITemperature,
		N:           openAIN,
	})
	if err != nil {
		return "", fmt.Errorf("openai api call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
