// Package daemon runs the journal web server in the foreground and
// records its pid and runtime state so other commands can find it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/store"
)

// ShutdownTimeout bounds how long in-flight requests get to finish
const ShutdownTimeout = 5 * time.Second

// Daemon manages the lifetime of the HTTP server
type Daemon struct {
	cfg     *config.Config
	handler http.Handler
	logger  *zap.SugaredLogger

	srv      *http.Server
	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	err      error

	mu    sync.Mutex
	state *State
}

// New creates a daemon serving handler on cfg.Server.Addr
func New(cfg *config.Config, handler http.Handler, logger *zap.SugaredLogger) *Daemon {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Daemon{
		cfg:      cfg,
		handler:  handler,
		logger:   logger,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start binds the listener, writes the pid and state files and begins
// serving. It returns once the server is accepting connections.
func (d *Daemon) Start(ctx context.Context) error {
	running, pid, err := IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check running state: %w", err)
	}
	if running {
		return fmt.Errorf("server already running with PID %d", pid)
	}

	ln, err := net.Listen("tcp", d.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.cfg.Server.Addr, err)
	}

	if err := WritePID(); err != nil {
		ln.Close()
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	d.state = &State{
		PID:       os.Getpid(),
		StartedAt: time.Now(),
		Addr:      ln.Addr().String(),
		Backend:   d.cfg.Storage.Backend,
	}
	if err := SaveState(d.state); err != nil {
		ln.Close()
		RemovePID()
		return fmt.Errorf("failed to save initial state: %w", err)
	}

	d.srv = &http.Server{
		Handler:           d.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	d.logger.Infow("server started",
		"pid", d.state.PID,
		"addr", d.state.Addr,
		"backend", d.state.Backend,
	)

	go d.run(ctx, ln)

	return nil
}

func (d *Daemon) run(ctx context.Context, ln net.Listener) {
	defer close(d.done)
	defer d.cleanup()

	errc := make(chan error, 1)
	go func() {
		errc <- d.srv.Serve(ln)
	}()

	var err error
	select {
	case <-ctx.Done():
		d.logger.Infow("context cancelled, shutting down")
		err = d.gracefulShutdown(errc)
	case <-d.shutdown:
		d.logger.Infow("shutdown requested")
		err = d.gracefulShutdown(errc)
	case err = <-errc:
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		d.logger.Errorw("server stopped with error", "error", err)
		d.err = err
	}
}

func (d *Daemon) gracefulShutdown(errc <-chan error) error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := d.srv.Shutdown(ctx); err != nil {
		d.logger.Warnw("graceful shutdown timed out, closing connections", "error", err)
		d.srv.Close()
	}
	return <-errc
}

// RecordEntry updates the persisted state after an entry is saved
func (d *Daemon) RecordEntry(e *store.Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == nil {
		return
	}
	d.state.EntriesSaved++
	d.state.LastEntryAt = e.Timestamp
	d.state.LastMood = e.Mood

	if err := SaveState(d.state); err != nil {
		d.logger.Warnw("failed to save state", "error", err)
	}
}

// Addr returns the address the server is listening on
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == nil {
		return ""
	}
	return d.state.Addr
}

// Stop signals the server to shut down gracefully
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		close(d.shutdown)
	})
}

// Wait blocks until the server has fully stopped and returns the error
// that stopped it, if any
func (d *Daemon) Wait() error {
	<-d.done
	return d.err
}

// cleanup removes PID and state files on shutdown
func (d *Daemon) cleanup() {
	if err := RemovePID(); err != nil {
		d.logger.Warnw("failed to remove PID file", "error", err)
	}
	if err := RemoveState(); err != nil {
		d.logger.Warnw("failed to remove state file", "error", err)
	}
	d.logger.Infow("server stopped")
}
