package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic wraps the Anthropic Messages API
type Anthropic struct {
	api   anthropic.Client
	model anthropic.Model
}

func newAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &Anthropic{
		// Retries are owned by the caller: one attempt per save
		api:   anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0)),
		model: anthropic.Model(model),
	}
}

func (c *Anthropic) Complete(ctx context.Context, system, prompt string) (string, error) {
	message, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: system,
			},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return "", ErrEmptyCompletion
}
