package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and subscribers",
		Long: `Displays the daemon's backend, history fill, poller counters and the front
ends currently subscribed to clipboard-update signals.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := rpcContext(cmd.Context())
	defer cancel()

	resp, err := c.Status(ctx)
	if err != nil {
		return rpcError("status", err)
	}

	if v.GetBool("json") {
		return writeJSON(os.Stdout, resp)
	}

	health := "unknown"
	if st, err := c.Health(ctx); err == nil {
		health = st.String()
	}
	printStatus(os.Stdout, resp, ipc.Resolve(v.GetString("socket")), health)
	return nil
}

func printStatus(out io.Writer, resp *message.StatusResponse, socket, health string) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Socket:\t%s\n", socket)
	fmt.Fprintf(w, "Health:\t%s\n", health)
	fmt.Fprintf(w, "Version:\t%s\n", resp.Version)
	fmt.Fprintf(w, "Backend:\t%s\n", resp.Backend)
	fmt.Fprintf(w, "History:\t%d / %d\n", resp.Size, resp.Capacity)
	fmt.Fprintf(w, "Interval:\t%s\n", resp.Interval)
	fmt.Fprintf(w, "Polls:\t%d (%d recorded, %d read failures)\n",
		resp.Poller.Ticks, resp.Poller.Entries, resp.Poller.ReadFailures)
	if resp.Poller.Oversize > 0 {
		fmt.Fprintf(w, "Skipped:\t%d values over %d bytes\n", resp.Poller.Oversize, history.MaxEntrySize)
	}
	if !resp.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n", resp.StartedAt.Local().Format(time.RFC3339), fmtAge(resp.StartedAt))
	}
	fmt.Fprintln(w)
	_ = w.Flush()

	if len(resp.Subscribers) == 0 {
		fmt.Fprintln(out, "No subscribers.")
		return
	}

	tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\tNAME\tCONNECTED\n")
	_, _ = fmt.Fprintf(tw, "--\t----\t---------\n")
	for _, s := range resp.Subscribers {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", shortID(s.ID), s.Name, fmtAge(s.ConnectedAt))
	}
	_ = tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
