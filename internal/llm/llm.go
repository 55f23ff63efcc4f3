package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cldixon/moodjournal/internal/config"
)

// ErrNoAPIKey is returned when the provider credential is not configured
var ErrNoAPIKey = errors.New("no API key configured")

// ErrEmptyCompletion is returned when the service answers without text
var ErrEmptyCompletion = errors.New("no text content in response")

// Completer produces a single text completion for a system instruction and
// a user prompt
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// NewClient creates the completer for cfg.Provider using apiKey
func NewClient(cfg *config.Config, apiKey string) (Completer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrNoAPIKey, cfg.APIKeyEnv())
	}

	switch cfg.Provider {
	case "anthropic":
		return newAnthropic(apiKey, cfg.Model), nil
	case "openai", "":
		return newOpenAI(apiKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (must be openai or anthropic)", cfg.Provider)
	}
}
