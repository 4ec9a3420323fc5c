package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/daemon"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/poller"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Watch the clipboard and serve its history",
		Long: `Polls the system clipboard, records every new distinct text value and serves
the history on the local socket until interrupted.

Backends:
  native  golang.design/x/clipboard (needs a display)
  exec    pbcopy/pbpaste, clip.exe, xclip/xsel/wl-clipboard
  memory  in-process only (headless)
  auto    native, then exec, then memory

Precedence (lowest → highest): defaults → config file → CLIPLOG_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("backend", string(clip.KindAuto), "clipboard backend: auto|native|exec|memory")
	f.Duration("interval", poller.DefaultInterval, "pause between clipboard probes")
	f.Int("capacity", history.DefaultCapacity, "maximum number of history entries")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(ctx context.Context, v *viper.Viper) error {
	closeLog, err := setupLogging(v)
	if err != nil {
		return err
	}
	defer closeLog()

	kind, err := clip.ParseKind(v.GetString("backend"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return daemon.Run(ctx, daemon.Config{
		Socket:   v.GetString("socket"),
		Backend:  kind,
		Interval: v.GetDuration("interval"),
		Capacity: v.GetInt("capacity"),
		Version:  Version,
	})
}
