package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPickCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pick N",
		Short: "Copy history entry N back to the clipboard",
		Long: `Looks up entry N (as numbered by "cliplog history"; negative counts from the
newest) and writes its content to the system clipboard.

Picking the newest entry does not add a duplicate to the history.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runPick(cmd, v, args[0]) },
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runPick(cmd *cobra.Command, v *viper.Viper, arg string) error {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("pick: %q is not an entry number", arg)
	}

	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := rpcContext(cmd.Context())
	defer cancel()

	entries, err := c.History(ctx)
	if err != nil {
		return rpcError("pick", err)
	}
	e, err := entryAt(entries, pos)
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}
	if err := c.Copy(ctx, e.Content); err != nil {
		return rpcError("pick", err)
	}
	fmt.Printf("Copied entry %d from %s: %s\n", pos, e.Timestamp, preview(e.Content))
	return nil
}
