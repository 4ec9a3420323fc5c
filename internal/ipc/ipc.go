// Package ipc locates and opens the local endpoint the daemon serves on.
//
// The endpoint is a Unix domain socket on Linux and macOS and a named pipe on
// Windows. It is owner-restricted by the OS, so no authentication is layered
// on top.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
)

// EnvSocket overrides the default endpoint path.
const EnvSocket = "CLIPLOG_SOCKET"

// SocketPath returns the endpoint path: $CLIPLOG_SOCKET when set, otherwise
// the platform default (see socketPath).
func SocketPath() string {
	if s := os.Getenv(EnvSocket); s != "" {
		return s
	}
	return socketPath()
}

// Resolve returns path, or SocketPath() when path is empty.
func Resolve(path string) string {
	if path != "" {
		return path
	}
	return SocketPath()
}

// IsRunning reports whether something is listening on path. It does a cheap
// dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := dialIPC(context.Background(), Resolve(path))
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen opens the endpoint at path, removing a stale socket left by a
// crashed run. It refuses to steal the endpoint from a live daemon.
func Listen(path string) (net.Listener, error) {
	path = Resolve(path)
	if IsRunning(path) {
		return nil, fmt.Errorf("ipc: %s is already in use by a running daemon", path)
	}
	if err := removeStale(path); err != nil {
		return nil, err
	}
	ln, err := listenIPC(path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}
	return ln, nil
}

// Dial connects to the endpoint at path.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	return dialIPC(ctx, Resolve(path))
}

// Cleanup removes the socket file at path, if any.
func Cleanup(path string) {
	_ = removeStale(Resolve(path))
}

func removeStale(path string) error {
	if !usesSocketFile {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ipc: remove stale socket %s: %w", path, err)
	}
	return nil
}
