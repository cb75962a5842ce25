package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/ambervale/tilemux/internal/config"
	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill <session>",
	Short: "Terminate a session's daemon and every pane it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKill(args[0])
	},
}

// runKill signals the session daemon's own pid (recorded in its
// session directory at startup) to shut down; the daemon's own SIGTERM
// handler (internal/cli/serve.go) tears panes down and removes the
// socket on its way out. Killing by pid rather than over the wire keeps
// this working even against a daemon wedged on something other than
// the IPC loop.
func runKill(session string) error {
	raw, err := os.ReadFile(config.PidPath(session))
	if err != nil {
		return fmt.Errorf("cli: session %q has no recorded daemon (already stopped?): %w", session, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("cli: corrupt pid file for session %q: %w", session, err)
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("cli: signal session %q (pid %d): %w", session, pid, err)
	}
	return nil
}
