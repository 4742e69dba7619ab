package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipvault/internal/item"
	"go.klb.dev/clipvault/internal/message"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy stdin into the clipboard history (like pbcopy)",
		Long: `Reads stdin and inserts it into the clipboard history through the daemon.
The daemon also places it on the system clipboard on the next recall.

Use --mime image/png to store an image:

  clipvault copy --mime image/png < screenshot.png`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runCopy(v) },
	}

	f := cmd.Flags()
	f.String("mime", "text/plain", "MIME type of the data being copied: text/plain|image/png")
	f.String("source", defaultSource(), "source identifier")
	addConfigFlag(cmd)

	return cmd
}

func runCopy(v *viper.Viper) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var content item.Content
	switch mime := v.GetString("mime"); mime {
	case "text/plain":
		content = item.TextContent(string(data))
	case "image/png":
		content = item.ImageContent(data)
	default:
		return fmt.Errorf("unsupported mime type %q", mime)
	}

	rec := item.New(content).Record()
	_, err = request(&message.Message{
		Type:    message.TypeCopy,
		Source:  v.GetString("source"),
		Records: []item.Record{rec},
	})
	return err
}
