package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPLOG_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPLOG_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("cliplog")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/cliplog/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/cliplog", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
	cmd.Flags().String("log-file", "", "write logs to this file instead of stderr")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSocketFlag adds the --socket flag to a command.
func addSocketFlag(cmd *cobra.Command) {
	cmd.Flags().String("socket", "", "daemon socket path (default: $XDG_RUNTIME_DIR/cliplog.sock or $TMPDIR/cliplog.sock)")
}

// setupLogging reads logging flags from viper and configures slog. The
// returned func closes the log file, if any.
func setupLogging(v *viper.Viper) (func() error, error) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)

	level := logging.ParseLevel(v.GetString("log-level"))
	if v.GetString("log-level") == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}

	return logging.Setup(logging.Options{
		Format: logging.ParseFormat(v.GetString("log-format")),
		Level:  level,
		File:   v.GetString("log-file"),
	})
}
