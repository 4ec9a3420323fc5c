package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/gateway"
	"go.klb.dev/cliplog/internal/grpcservice"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/wire"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow clipboard-update signals",
		Long: `Subscribes to the daemon and prints one line per clipboard-update signal
until interrupted.

The signal carries no payload. In text mode the newest entry is re-read and
shown; --json prints the raw events as newline-delimited JSON. --http follows
the HTTP event stream that web front ends use instead of the gRPC stream.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWatch(cmd, v) },
	}

	cmd.Flags().Bool("json", false, "print raw events as newline-delimited JSON")
	cmd.Flags().Bool("http", false, "follow /v1/events over HTTP instead of gRPC")
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

// historyWatcher is implemented by grpcservice.Client and gateway.Client.
type historyWatcher interface {
	History(ctx context.Context) ([]history.Entry, error)
	Watch(ctx context.Context, name string, fn func(*message.Event) error) error
	Close() error
}

var (
	_ historyWatcher = (*grpcservice.Client)(nil)
	_ historyWatcher = (*gateway.Client)(nil)
)

func dialWatcher(v *viper.Viper) (historyWatcher, error) {
	if !v.GetBool("http") {
		c, err := dialDaemon(v)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	path, err := daemonPath(v)
	if err != nil {
		return nil, err
	}
	return gateway.Dial(path), nil
}

func runWatch(cmd *cobra.Command, v *viper.Viper) error {
	c, err := dialWatcher(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var handle func(*message.Event) error
	if v.GetBool("json") {
		enc := wire.NewEncoder(os.Stdout)
		handle = func(ev *message.Event) error { return enc.WriteMsg(ev) }
	} else {
		handle = func(ev *message.Event) error { return printLatest(ctx, c, ev) }
	}

	err = c.Watch(ctx, "cliplog watch", handle)
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return rpcError("watch", err)
	}
	return nil
}

// printLatest re-reads the history after a signal and prints the newest entry.
func printLatest(ctx context.Context, c historyWatcher, ev *message.Event) error {
	rctx, cancel := rpcContext(ctx)
	defer cancel()

	entries, err := c.History(rctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("%s\t%s\n", ev.At.Local().Format("15:04:05"), ev.Type)
		return nil
	}
	e := entries[len(entries)-1]
	fmt.Printf("%s\t%d\t%s\n", e.Timestamp, len(entries), preview(e.Content))
	return nil
}
