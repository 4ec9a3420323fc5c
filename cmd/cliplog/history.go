package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/message"
)

func newHistoryCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the recorded clipboard history",
		Long: `Prints the daemon's clipboard history, oldest first and newest last.

The INDEX column is the position accepted by "cliplog paste --index" and
"cliplog pick".`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runHistory(cmd, v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	f.Int("limit", 0, "show only the newest N entries (0 = all)")
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runHistory(cmd *cobra.Command, v *viper.Viper) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := rpcContext(cmd.Context())
	defer cancel()

	entries, err := c.History(ctx)
	if err != nil {
		return rpcError("history", err)
	}

	first := 0
	if limit := v.GetInt("limit"); limit > 0 && limit < len(entries) {
		first = len(entries) - limit
	}

	if v.GetBool("json") {
		return writeJSON(os.Stdout, message.HistoryResponse{Entries: entries[first:]})
	}

	printHistory(os.Stdout, entries, first)
	return nil
}

func printHistory(out io.Writer, entries []history.Entry, first int) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "History is empty.")
		return
	}
	tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "INDEX\tTIMESTAMP\tCONTENT\n")
	_, _ = fmt.Fprintf(tw, "-----\t---------\t-------\n")
	for i := first; i < len(entries); i++ {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, entries[i].Timestamp, preview(entries[i].Content))
	}
	_ = tw.Flush()
}
