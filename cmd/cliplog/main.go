// cliplog: clipboard history daemon and CLI.
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
		Use:   "cliplog",
		Short: "Clipboard history daemon",
		Long: `cliplog watches the system clipboard and keeps the last 100 distinct text
values with their timestamps. Front ends read the history and copy entries back
to the clipboard through a local socket (gRPC and HTTP/JSON on the same path).

Run "cliplog daemon" once per session. The other commands talk to it.

Config file search order (first found wins):
  /etc/cliplog/cliplog.toml
  $HOME/.config/cliplog/cliplog.toml
  path supplied via --config

All flags can be set via CLIPLOG_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newHistoryCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newPickCmd(),
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
			fmt.Printf("cliplog %s\n", Version)
		},
	}
}
