package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"go.klb.dev/clipvault/internal/clip"
	"go.klb.dev/clipvault/internal/history"
	"go.klb.dev/clipvault/internal/ipc"
	"go.klb.dev/clipvault/internal/notify"
	"go.klb.dev/clipvault/internal/service"
	"go.klb.dev/clipvault/internal/storage"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard-history daemon",
		Long: `Starts the clipvault daemon: polls the system clipboard, maintains the
bounded deduplicated history, persists it to the shared per-user database,
and serves the IPC socket the other sub-commands talk to.

Config file search order:
  /etc/clipvault/clipvault.toml
  $HOME/.config/clipvault/clipvault.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPVAULT_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.String("data-dir", defaultDataDir(), "directory holding the shared history database")
	f.String("backend", "", "clipboard backend: native|text|headless|memory (default: native)")
	f.Int("max-items", history.DefaultMaxItems, "maximum history entries before the oldest are evicted")
	f.Duration("poll-interval", history.DefaultPollInterval, "how often the clipboard is sampled")
	f.Duration("clear-resume-delay", history.DefaultResumeDelay, "poll suspension after `clear`")
	f.String("source", defaultSource(), "name for this daemon in change events")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	source := v.GetString("source")

	backend, err := clip.New(v.GetString("backend"))
	if err != nil {
		return err
	}
	defer backend.Close()

	db, err := storage.OpenShared(v.GetString("data-dir"))
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer db.Close()

	bus := notify.NewBus()
	store := history.New(backend, db, bus, history.Options{
		MaxItems:     v.GetInt("max-items"),
		PollInterval: v.GetDuration("poll-interval"),
		ResumeDelay:  v.GetDuration("clear-resume-delay"),
		Source:       source,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Reload(ctx); err != nil {
		slog.Warn("initial history load failed, starting empty", "err", err)
	}

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("listen %s: %w", ipc.SocketPath(), err)
	}

	slog.Info("clipvault daemon starting",
		"version", Version,
		"socket", ipc.SocketPath(),
		"backend", backend.Name(),
		"items", store.Len(),
		"max_items", store.MaxItems(),
	)

	svc := service.New(store, bus, backend.Name(), Version)

	// Changes announced by sibling processes land on the bus via the IPC
	// handler; reload so this daemon's in-memory copy follows.
	changes, cancel := bus.Subscribe()
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Run(ctx) })
	g.Go(func() error { return svc.Serve(ctx, ln) })
	g.Go(func() error {
		store.WatchChanges(ctx, changes)
		return nil
	})

	err = g.Wait()
	slog.Info("clipvault daemon stopped")
	return err
}
