package main

import (
	"github.com/spf13/cobra"

	"go.klb.dev/clipvault/internal/message"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := resolveID(args[0])
			if err != nil {
				return err
			}
			_, err = request(&message.Message{
				Type:   message.TypeDelete,
				ID:     id,
				Source: defaultSource(),
			})
			return err
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire clipboard history",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := request(&message.Message{
				Type:   message.TypeClear,
				Source: defaultSource(),
			})
			return err
		},
	}
}
