// Package cli provides the Cobra command-line interface for tilemux,
// wiring internal/pty, internal/ipc, and internal/screen together into
// a session daemon, and providing the attach/kill/list-sessions client
// commands that talk to it over the session's control socket.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for tilemux.
var rootCmd = &cobra.Command{
	Use:   "tilemux",
	Short: "A terminal workspace multiplexer",
	Long:  `tilemux tiles, floats, and stacks panes across tabs, served to one or more local or remote clients.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(listSessionsCmd)
	rootCmd.AddCommand(serveCmd)
}
