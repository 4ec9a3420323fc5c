package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/grpcservice"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
)

// rpcTimeout bounds every unary call made by the client commands.
const rpcTimeout = 5 * time.Second

// previewWidth is the number of runes shown per entry in tables.
const previewWidth = 60

// dialDaemon returns a client for the daemon on the configured socket.
// No auth needed: the socket is local and owner-restricted by the OS.
func dialDaemon(v *viper.Viper) (*grpcservice.Client, error) {
	path, err := daemonPath(v)
	if err != nil {
		return nil, err
	}
	return grpcservice.Dial(path)
}

// daemonPath resolves the configured socket and checks that a daemon answers.
func daemonPath(v *viper.Viper) (string, error) {
	path := ipc.Resolve(v.GetString("socket"))
	if !ipc.IsRunning(path) {
		return "", fmt.Errorf("no cliplog daemon listening on %s (start one with \"cliplog daemon\")", path)
	}
	return path, nil
}

func rpcContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, rpcTimeout)
}

// rpcError turns a gRPC status into a plain CLI error.
func rpcError(op string, err error) error {
	return fmt.Errorf("%s: %s", op, grpcservice.ErrorMessage(err))
}

// entryAt picks an entry by its 1-based position in the history, oldest
// first. Negative positions count back from the newest (-1 is the newest).
func entryAt(entries []history.Entry, pos int) (history.Entry, error) {
	n := len(entries)
	if n == 0 {
		return history.Entry{}, fmt.Errorf("history is empty")
	}
	i := pos - 1
	if pos < 0 {
		i = n + pos
	}
	if pos == 0 || i < 0 || i >= n {
		return history.Entry{}, fmt.Errorf("no entry %d (history holds %d)", pos, n)
	}
	return entries[i], nil
}

// preview flattens content to one line and truncates it for display.
func preview(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(s) <= previewWidth {
		return s
	}
	r := []rune(s)
	return string(r[:previewWidth-1]) + "…"
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}

// writeJSON prints v as indented JSON followed by a newline.
func writeJSON(out io.Writer, v any) error {
	enc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(out, string(enc))
	return err
}
