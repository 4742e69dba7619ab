package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go.klb.dev/clipvault/internal/ipc"
	"go.klb.dev/clipvault/internal/message"
)

func newStatusCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus(jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output raw JSON")

	return cmd
}

func runStatus(jsonOut bool) error {
	resp, err := request(&message.Message{Type: message.TypeStatus})
	if err != nil {
		return err
	}
	if resp.Status == nil {
		return fmt.Errorf("daemon returned no status")
	}

	if jsonOut {
		enc, _ := json.MarshalIndent(resp.Status, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	st := resp.Status
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Socket:\t%s\n", ipc.SocketPath())
	fmt.Fprintf(w, "Version:\t%s\n", st.Version)
	fmt.Fprintf(w, "Backend:\t%s\n", st.Backend)
	fmt.Fprintf(w, "Items:\t%d / %d\n", st.Count, st.MaxItems)
	fmt.Fprintf(w, "Subscribers:\t%d\n", st.Subscribers)
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n",
			st.StartedAt.UTC().Format(time.RFC3339), fmtAge(st.StartedAt))
	}
	return w.Flush()
}
