package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/daemon"
	"github.com/cldixon/moodjournal/internal/metrics"
	"github.com/cldixon/moodjournal/internal/store"
	"github.com/cldixon/moodjournal/internal/web"
)

var serveAddrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the journal web app in the foreground",
	Long: `Serve the journal page: write an entry, pick a mood, read the reflection,
browse past entries and download them as an RTF document.

Configure the address and storage in ~/.config/moodjournal/config.yaml:

  server:
    addr: 127.0.0.1:8501
  storage:
    backend: sqlite   # memory, csv, sqlite, postgres, or redis

Use Ctrl+C or 'moodjournal stop' to shut down gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddrFlag
		}

		logger, err := newLogger(cfg.Server.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		journal, db, err := openJournal(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		dataDir, err := config.Dir()
		if err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)

		var d *daemon.Daemon
		srv := web.New(journal,
			web.WithLogger(logger),
			web.WithBackend(cfg.Storage.Backend),
			web.WithDataDir(dataDir),
			web.OnSave(func(e *store.Entry) { d.RecordEntry(e) }),
		)
		d = daemon.New(cfg, srv.Handler(), logger)

		if err := d.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("moodjournal is listening on http://%s\n", d.Addr())

		return d.Wait()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running web app",
	RunE: func(cmd *cobra.Command, args []string) error {
		running, pid, err := daemon.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check server status: %w", err)
		}
		if !running {
			fmt.Println("Server is not running")
			return nil
		}

		fmt.Printf("Stopping server (PID: %d)...\n", pid)
		if err := daemon.StopRunning(daemon.ShutdownTimeout + time.Second); err != nil {
			return err
		}
		fmt.Println("Server stopped")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show web app status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		running, pid, err := daemon.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check server status: %w", err)
		}

		fmt.Println("Configuration:")
		fmt.Printf("  Storage:     %s\n", cfg.Storage.Backend)
		fmt.Printf("  Provider:    %s (%s)\n", cfg.Provider, cfg.Model)
		if cfg.APIKey() == "" {
			fmt.Printf("  API key:     not set (%s); reflections disabled\n", cfg.APIKeyEnv())
		}
		if dir, err := config.Dir(); err == nil {
			if snap, err := metrics.Gather(dir); err == nil {
				fmt.Printf("  Disk:        %s free (%.1f%% used)\n", metrics.Bytes(snap.DiskFree), snap.DiskPercent)
			}
		}
		fmt.Println()

		if !running {
			fmt.Println("Status: NOT RUNNING")
			return nil
		}

		fmt.Printf("Status: RUNNING (PID: %d)\n", pid)

		state, err := daemon.LoadState()
		if err != nil {
			fmt.Printf("  (could not load state: %v)\n", err)
			return nil
		}
		if state != nil {
			fmt.Printf("  Address:     http://%s\n", state.Addr)
			fmt.Printf("  Started:     %s (up %s)\n", state.StartedAt.Format(time.RFC1123), state.Uptime())
			fmt.Printf("  Entries:     %d saved this run\n", state.EntriesSaved)
			if !state.LastEntryAt.IsZero() {
				fmt.Printf("  Last entry:  %s (%s)\n", state.LastEntryAt.Format(time.RFC1123), state.LastMood)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)

	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "Listen address (overrides config)")
}
