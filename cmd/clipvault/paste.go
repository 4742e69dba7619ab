package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipvault/internal/message"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print a history item to stdout (like pbpaste)",
		Long: `Writes the newest history item of the requested type to stdout. If no
item of that type exists, nothing is printed (exit 0).

  clipvault paste --mime image/png > screenshot.png
  clipvault paste --id 4f9d…      # a specific entry from 'clipvault list'`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runPaste(v) },
	}

	f := cmd.Flags()
	f.String("mime", "text/plain", "preferred MIME type to output: text/plain|image/png")
	f.String("id", "", "print a specific history entry instead of the newest")
	addConfigFlag(cmd)

	return cmd
}

func runPaste(v *viper.Viper) error {
	resp, err := request(&message.Message{Type: message.TypeList})
	if err != nil {
		return err
	}

	id := v.GetString("id")
	mime := v.GetString("mime")

	for _, rec := range resp.Records {
		if id != "" {
			if rec.ID != id {
				continue
			}
		} else if !recordMatchesMime(rec.Text != "", mime) {
			continue
		}

		if rec.Text != "" {
			_, err = os.Stdout.WriteString(rec.Text)
		} else {
			_, err = os.Stdout.Write(rec.Image)
		}
		return err
	}

	// Requested type not present — exit 0, print nothing (pbpaste behaviour).
	return nil
}

func recordMatchesMime(isText bool, mime string) bool {
	if isText {
		return mime == "text/plain"
	}
	return mime == "image/png"
}
