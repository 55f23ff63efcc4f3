package reflection

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cldixon/moodjournal/internal/llm"
	"github.com/cldixon/moodjournal/internal/mood"
)

// fakeCompleter records the last request and answers with fn
type fakeCompleter struct {
	system string
	prompt string
	calls  int
	fn     func(ctx context.Context) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	f.system = system
	f.prompt = prompt
	return f.fn(ctx)
}

func reply(text string, err error) *fakeCompleter {
	return &fakeCompleter{fn: func(context.Context) (string, error) { return text, err }}
}

func TestReflectReturnsCompletionVerbatim(t *testing.T) {
	fc := reply("  That sounds hard.\nThemes: fatigue  ", nil)
	r := New(fc, WithSystemPrompt("be kind"), WithCompanion("A gentle friend."))

	res := r.Reflect(context.Background(), mood.Sad, "Rough day.")
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.Text != "  That sounds hard.\nThemes: fatigue  " {
		t.Errorf("completion not returned verbatim: %q", res.Text)
	}

	if fc.system != "be kind" {
		t.Errorf("system prompt not passed through: %q", fc.system)
	}
	for _, want := range []string{"😔 Sad", "Rough day.", "A gentle friend."} {
		if !strings.Contains(fc.prompt, want) {
			t.Errorf("prompt missing %q: %q", want, fc.prompt)
		}
	}
}

func TestReflectFailureUsesFallback(t *testing.T) {
	cause := errors.New("401 unauthorized")
	fc := reply("", cause)
	r := New(fc)

	res := r.Reflect(context.Background(), mood.Angry, "Traffic.")
	if !res.Failed() {
		t.Fatal("expected failure")
	}
	if res.Text != Fallback {
		t.Errorf("expected fallback text, got %q", res.Text)
	}
	if !errors.Is(res.Err, cause) {
		t.Errorf("expected cause to be preserved, got %v", res.Err)
	}
	if fc.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", fc.calls)
	}
}

func TestReflectEmptyCompletionIsFailure(t *testing.T) {
	r := New(reply("   ", nil))

	res := r.Reflect(context.Background(), mood.Neutral, "Fine.")
	if !errors.Is(res.Err, llm.ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", res.Err)
	}
	if res.Text != Fallback {
		t.Errorf("expected fallback text, got %q", res.Text)
	}
}

func TestReflectTimeout(t *testing.T) {
	fc := &fakeCompleter{fn: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := New(fc, WithTimeout(20*time.Millisecond))

	res := r.Reflect(context.Background(), mood.Anxious, "Waiting.")
	if !errors.Is(res.Err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", res.Err)
	}
	if res.Text != Fallback {
		t.Errorf("expected fallback text, got %q", res.Text)
	}
}

// TestReflectTimeoutIgnoredContext verifies the timeout holds even when the
// client never looks at its context.
func TestReflectTimeoutIgnoredContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	fc := &fakeCompleter{fn: func(context.Context) (string, error) {
		<-release
		return "too late", nil
	}}
	r := New(fc, WithTimeout(20*time.Millisecond))

	start := time.Now()
	res := r.Reflect(context.Background(), mood.Happy, "Sunny.")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Reflect blocked for %v", elapsed)
	}
	if !errors.Is(res.Err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", res.Err)
	}
}

func TestReflectRecoversPanic(t *testing.T) {
	fc := &fakeCompleter{fn: func(context.Context) (string, error) {
		panic("malformed response")
	}}
	r := New(fc)

	res := r.Reflect(context.Background(), mood.Sad, "Oops.")
	if !res.Failed() || res.Text != Fallback {
		t.Errorf("expected fallback after panic, got %+v", res)
	}
}

func TestUnavailableReflector(t *testing.T) {
	r := Unavailable(llm.ErrNoAPIKey)

	res := r.Reflect(context.Background(), mood.Sad, "Rough day.")
	if !errors.Is(res.Err, llm.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", res.Err)
	}
	if res.Text != Fallback {
		t.Errorf("expected fallback text, got %q", res.Text)
	}
}

func TestReflectBadTemplate(t *testing.T) {
	fc := reply("unused", nil)
	r := New(fc, WithTemplate("{{.Missing}}"))

	res := r.Reflect(context.Background(), mood.Happy, "Hi.")
	if !res.Failed() {
		t.Fatal("expected failure for broken template")
	}
	if fc.calls != 0 {
		t.Error("service should not be called when the prompt cannot render")
	}
}
