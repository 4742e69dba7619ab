package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.klb.dev/clipvault/internal/message"
)

func newListCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the clipboard history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output raw JSON records")

	return cmd
}

func runList(jsonOut bool) error {
	resp, err := request(&message.Message{Type: message.TypeList})
	if err != nil {
		return err
	}

	if jsonOut {
		enc, _ := json.MarshalIndent(resp.Records, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	if len(resp.Records) == 0 {
		fmt.Println("History is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\tKIND\tAGE\tCONTENT\n")
	_, _ = fmt.Fprintf(tw, "--\t----\t---\t-------\n")
	for _, rec := range resp.Records {
		it, err := rec.Item()
		if err != nil {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			shortID(it.ID), it.Content.Kind, fmtAge(it.CreatedAt), it.Content.Preview(60),
		)
	}
	return tw.Flush()
}

// shortID abbreviates a uuid for table output; full IDs come from --json.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID expands an abbreviated ID back to the full identity by asking
// the daemon for the current list. Ambiguous or unknown prefixes fail.
func resolveID(prefix string) (string, error) {
	resp, err := request(&message.Message{Type: message.TypeList})
	if err != nil {
		return "", err
	}
	var match string
	for _, rec := range resp.Records {
		if rec.ID == prefix {
			return rec.ID, nil
		}
		if len(prefix) >= 4 && len(rec.ID) >= len(prefix) && rec.ID[:len(prefix)] == prefix {
			if match != "" {
				return "", fmt.Errorf("ambiguous id prefix %q", prefix)
			}
			match = rec.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no history entry matches %q", prefix)
	}
	return match, nil
}
