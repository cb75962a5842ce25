package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/ambervale/tilemux/internal/config"
	"github.com/spf13/cobra"
)

var listSessionsCmd = &cobra.Command{
	Use:   "list-sessions",
	Short: "List every session with a live daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListSessions()
	},
}

func runListSessions() error {
	entries, err := os.ReadDir(config.BaseDir())
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No sessions")
			return nil
		}
		return fmt.Errorf("cli: list sessions: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if socketLive(config.SocketPath(e.Name())) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		fmt.Println("No sessions")
		return nil
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
