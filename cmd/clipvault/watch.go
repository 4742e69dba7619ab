package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.klb.dev/clipvault/internal/notify"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print history change events as they happen",
		Long: `Subscribes to the daemon's change stream and prints one line per history
mutation until interrupted. Useful for wiring the history into other tools.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ch, err := notify.SubscribeRemote(ctx, defaultSource())
			if err != nil {
				return err
			}
			for c := range ch {
				if c.Source != "" {
					fmt.Printf("history changed: %d items (by %s)\n", c.Count, c.Source)
				} else {
					fmt.Printf("history changed: %d items\n", c.Count)
				}
			}
			return nil
		},
	}
}
