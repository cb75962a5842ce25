// Package config resolves the handful of environment-derived settings
// tilemux needs: the user's shell, their editor, and where to put the
// session's control socket. There is no config file format to parse —
// everything here comes from the environment and well-known defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultShell = "/bin/sh"

// Shell resolves the login shell to spawn when a pane has no explicit
// command line: $SHELL, falling back to /bin/sh.
func Shell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return defaultShell
}

// Editor resolves the editor to spawn when a pane is opened with a
// file_to_open: $EDITOR, then $VISUAL. Returns ok=false when neither is
// set, matching the spawn contract's EditorUnset failure.
func Editor() (editor string, ok bool) {
	if e := os.Getenv("EDITOR"); e != "" {
		return e, true
	}
	if e := os.Getenv("VISUAL"); e != "" {
		return e, true
	}
	return "", false
}

// BaseDir returns the directory every session's runtime directory lives
// under: $XDG_RUNTIME_DIR/tilemux, falling back to a per-uid tmp
// directory when XDG_RUNTIME_DIR is unset. Listing its entries enumerates
// every session that has ever been started (tilemux list-sessions).
func BaseDir() string {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = filepath.Join(os.TempDir(), fmt.Sprintf("tilemux-%d", os.Getuid()))
	}
	return filepath.Join(base, "tilemux")
}

// SocketDir returns the directory a session's control socket, pid file,
// and any other runtime files live in.
func SocketDir(sessionName string) string {
	return filepath.Join(BaseDir(), sessionName)
}

// SocketPath returns the Unix socket path for a session. Callers create
// SocketDir with 0700 permissions and the socket itself ends up 0600,
// since it's a control channel for a single user's clients.
func SocketPath(sessionName string) string {
	return filepath.Join(SocketDir(sessionName), "tilemux")
}

// PidPath returns the path of the file a session daemon records its own
// pid in, used by `tilemux kill` to find the process to signal.
func PidPath(sessionName string) string {
	return filepath.Join(SocketDir(sessionName), "pid")
}
