package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/entry"
	"github.com/cldixon/moodjournal/internal/reflection"
	"github.com/cldixon/moodjournal/internal/store"
)

// newLogger builds a production zap logger at the given level
func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// cliLogger reports warnings from one-shot commands on stderr
func cliLogger() *zap.SugaredLogger {
	logger, err := newLogger("warn")
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger
}

// openJournal opens the configured store and wraps it in a Journal. The
// caller closes the returned store.
func openJournal(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*entry.Journal, store.Store, error) {
	s, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	r, err := reflection.FromConfig(cfg, logger)
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	j, err := entry.New(ctx, s, r)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return j, s, nil
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// truncate shortens s to one line of at most n runes
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
