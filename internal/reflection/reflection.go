// Package reflection turns a mood and an entry into a short AI reflection.
// Failures never escape as panics or bare errors: the caller always gets
// text to store, plus the cause when the completion service could not be
// used.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cldixon/moodjournal/internal/companion"
	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/llm"
	"github.com/cldixon/moodjournal/internal/mood"
	"github.com/cldixon/moodjournal/internal/prompt"
	"go.uber.org/zap"
)

// Fallback is stored in place of a reflection when the service call fails
const Fallback = "AI reflection not available."

// DefaultTimeout bounds a single completion call
const DefaultTimeout = 30 * time.Second

// ErrTimeout marks a completion call that exceeded the reflection timeout
var ErrTimeout = errors.New("reflection timed out")

// Result is the outcome of one reflection attempt
type Result struct {
	Text string
	Err  error
}

// Failed reports whether Text is the fallback
func (r Result) Failed() bool {
	return r.Err != nil
}

// Reflector calls the completion service once per entry
type Reflector struct {
	completer   llm.Completer
	unavailable error
	system      string
	template    string
	companion   string
	timeout     time.Duration
	logger      *zap.SugaredLogger
	now         func() time.Time
}

// Option configures a Reflector
type Option func(*Reflector)

// WithSystemPrompt sets the system instruction sent with every request
func WithSystemPrompt(s string) Option {
	return func(r *Reflector) { r.system = s }
}

// WithTemplate sets the prompt template (see package prompt)
func WithTemplate(tmpl string) Option {
	return func(r *Reflector) { r.template = tmpl }
}

// WithCompanion sets the companion description injected into the prompt
func WithCompanion(description string) Option {
	return func(r *Reflector) { r.companion = description }
}

// WithTimeout bounds each completion call
func WithTimeout(d time.Duration) Option {
	return func(r *Reflector) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used to record failed calls
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Reflector) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reflector around c
func New(c llm.Completer, opts ...Option) *Reflector {
	r := &Reflector{
		completer: c,
		system:    config.DefaultSystemPrompt,
		template:  prompt.DefaultTemplate,
		timeout:   DefaultTimeout,
		logger:    zap.NewNop().Sugar(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unavailable creates a Reflector whose every call fails with cause. The
// journal stays usable without a configured completion service.
func Unavailable(cause error, opts ...Option) *Reflector {
	r := New(nil, opts...)
	r.unavailable = cause
	return r
}

// FromConfig builds a Reflector from the user's configuration: provider
// client, system prompt, reflection template and companion. A missing API
// key or unknown companion degrades the reflector instead of failing.
func FromConfig(cfg *config.Config, logger *zap.SugaredLogger) (*Reflector, error) {
	system, err := config.LoadSystemPrompt()
	if err != nil {
		return nil, err
	}
	tmpl, err := config.LoadReflectionPrompt()
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithSystemPrompt(system),
		WithTemplate(tmpl),
		WithTimeout(cfg.ReflectionTimeout),
		WithLogger(logger),
	}

	if cfg.Companion != "" {
		c, err := companion.Get(cfg.Companion)
		if err != nil {
			if logger != nil {
				logger.Warnw("companion unavailable, using plain prompt", "companion", cfg.Companion, "error", err)
			}
		} else {
			opts = append(opts, WithCompanion(c.Description))
		}
	}

	client, err := llm.NewClient(cfg, cfg.APIKey())
	if err != nil {
		if logger != nil {
			logger.Warnw("reflections disabled", "provider", cfg.Provider, "error", err)
		}
		return Unavailable(err, opts...), nil
	}

	return New(client, opts...), nil
}

// Reflect asks the completion service for a reflection on text. It makes a
// single attempt bounded by the configured timeout.
func (r *Reflector) Reflect(ctx context.Context, m mood.Mood, text string) Result {
	if r.completer == nil {
		cause := r.unavailable
		if cause == nil {
			cause = llm.ErrNoAPIKey
		}
		return Result{Text: Fallback, Err: cause}
	}

	promptText, err := prompt.Render(r.template, prompt.NewContext(r.companion, m, text, r.now()))
	if err != nil {
		return r.fail(m, fmt.Errorf("failed to render prompt: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.complete(ctx, promptText)
	if err != nil {
		return r.fail(m, err)
	}

	return Result{Text: reply}
}

type completion struct {
	text string
	err  error
}

// complete runs the call in its own goroutine so a client that ignores
// context cancellation still cannot hold the caller past the timeout
func (r *Reflector) complete(ctx context.Context, promptText string) (string, error) {
	done := make(chan completion, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- completion{err: fmt.Errorf("completion panicked: %v", p)}
			}
		}()
		text, err := r.completer.Complete(ctx, r.system, promptText)
		done <- completion{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}
		return "", ctx.Err()
	case c := <-done:
		if c.err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%w after %s: %v", ErrTimeout, r.timeout, c.err)
			}
			return "", c.err
		}
		if strings.TrimSpace(c.text) == "" {
			return "", llm.ErrEmptyCompletion
		}
		return c.text, nil
	}
}

func (r *Reflector) fail(m mood.Mood, err error) Result {
	r.logger.Warnw("reflection failed", "mood", m.Label(), "error", err)
	return Result{Text: Fallback, Err: err}
}
