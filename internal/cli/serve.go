package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ambervale/tilemux/internal/config"
	"github.com/ambervale/tilemux/internal/ipc"
	"github.com/ambervale/tilemux/internal/pty"
	"github.com/ambervale/tilemux/internal/screen"
	"github.com/spf13/cobra"
)

// serveCmd runs one session's daemon in the foreground: the Screen event
// loop, its PTY manager, and its IPC listener. Hidden because it's only
// ever invoked by attachCmd re-exec'ing itself into a detached child,
// never typed by a user directly.
var serveCmd = &cobra.Command{
	Use:    "__serve <session>",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(args[0])
	},
}

// runServer builds one session's Screen/pty.Manager/ipc.Server triangle
// and blocks running the Screen loop until a terminating signal arrives.
// Screen is constructed first with a nil transport, since it is itself
// the EventSink pty.Manager and the Handler ipc.Server are built
// against — SetTransport wires the two back in once they exist.
func runServer(sessionName string) error {
	dir := config.SocketDir(sessionName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("cli: create session dir: %w", err)
	}

	pidPath := config.PidPath(sessionName)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return fmt.Errorf("cli: write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	scr := screen.New(sessionName, nil, nil)
	ptyMgr := pty.NewManager(sessionName, scr)
	ipcSrv := ipc.NewServer(sessionName, scr)
	scr.SetTransport(ptyMgr, ipcSrv)

	// One tab at a default size; clients reconcile it to their own
	// viewport with a TerminalResize message right after attaching.
	scr.AddTab("main", 24, 80)
	if err := scr.SpawnInitialPane(0, pty.SpawnRequest{}); err != nil {
		return fmt.Errorf("cli: spawn initial pane: %w", err)
	}

	if err := ipcSrv.ListenUnix(config.SocketPath(sessionName)); err != nil {
		return fmt.Errorf("cli: listen: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		ptyMgr.Close()
		scr.Stop()
	}()

	scr.Run()
	os.Remove(config.SocketPath(sessionName))
	return nil
}
