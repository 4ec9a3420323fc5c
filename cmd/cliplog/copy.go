package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy [text...]",
		Short: "Put text on the clipboard (like pbcopy)",
		Long: `Sends text to the daemon, which writes it to the system clipboard. The
arguments are joined with spaces; with no arguments stdin is read instead.

The new value shows up in the history on the daemon's next poll.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runCopy(cmd, v, args) },
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runCopy(cmd *cobra.Command, v *viper.Viper, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if text == "" {
		return nil
	}

	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := rpcContext(cmd.Context())
	defer cancel()

	if err := c.Copy(ctx, text); err != nil {
		return rpcError("copy", err)
	}
	return nil
}
