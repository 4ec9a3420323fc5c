package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print a history entry to stdout (like pbpaste)",
		Long: `Writes the newest history entry, or the entry at --index, to stdout without
a trailing newline.

If the history is empty nothing is printed (exit 0).`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runPaste(cmd, v) },
	}

	cmd.Flags().Int("index", -1, "history position as shown by \"cliplog history\" (negative counts from the newest)")
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runPaste(cmd *cobra.Command, v *viper.Viper) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := rpcContext(cmd.Context())
	defer cancel()

	entries, err := c.History(ctx)
	if err != nil {
		return rpcError("paste", err)
	}
	if len(entries) == 0 {
		return nil
	}

	e, err := entryAt(entries, v.GetInt("index"))
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	_, err = os.Stdout.WriteString(e.Content)
	return err
}
