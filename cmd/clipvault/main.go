// clipvault: a clipboard-history daemon and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipvault",
		Short: "Clipboard history daemon and CLI",
		Long: `clipvault keeps a bounded, deduplicated history of everything copied to
the system clipboard and shares it between processes through a per-user
database and a local IPC socket.

Run "clipvault serve" once per session. The other sub-commands talk to the
daemon: list the history, recall an entry back onto the clipboard, delete
entries, or watch for changes.

Config file search order (first found wins):
  /etc/clipvault/clipvault.toml
  $HOME/.config/clipvault/clipvault.toml
  path supplied via --config

All flags can be set via CLIPVAULT_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newListCmd(),
		newRecallCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newWatchCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipvault %s\n", Version)
		},
	}
}
