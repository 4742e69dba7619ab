package main

import (
	"github.com/spf13/cobra"

	"go.klb.dev/clipvault/internal/message"
)

func newRecallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recall <id>",
		Short: "Place a history item back on the system clipboard",
		Long: `Writes the identified history entry back to the system clipboard. The
daemon's next poll sees the write and promotes the entry to the front of
the history. IDs (or unambiguous prefixes) come from 'clipvault list'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := resolveID(args[0])
			if err != nil {
				return err
			}
			_, err = request(&message.Message{
				Type:   message.TypeRecall,
				ID:     id,
				Source: defaultSource(),
			})
			return err
		},
	}
}
