package cli

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/ambervale/tilemux/internal/config"
	"github.com/ambervale/tilemux/internal/ipc"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var attachCmd = &cobra.Command{
	Use:   "attach <session>",
	Short: "Attach to a session, starting it if it doesn't exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAttach(args[0])
	},
}

const dialTimeout = 2 * time.Second

func runAttach(session string) error {
	sock := config.SocketPath(session)
	if !socketLive(sock) {
		if err := spawnDaemon(session); err != nil {
			return fmt.Errorf("cli: start session %q: %w", session, err)
		}
	}

	conn, err := dialWithRetry(sock)
	if err != nil {
		return fmt.Errorf("cli: attach %q: %w", session, err)
	}
	defer conn.Close()

	if err := ipc.WriteFrame(conn, ipc.ClientToServerMsg{Kind: ipc.MsgFirstClientConnected, IsCLIClient: true}.Marshal()); err != nil {
		return fmt.Errorf("cli: handshake: %w", err)
	}

	stdinFd := int(os.Stdin.Fd())
	var restore *term.State
	if term.IsTerminal(stdinFd) {
		restore, err = term.MakeRaw(stdinFd)
		if err == nil {
			defer term.Restore(stdinFd, restore)
		}
	}
	sendSize(conn)

	resizeCh := make(chan os.Signal, 1)
	signal.Notify(resizeCh, syscall.SIGWINCH)
	go func() {
		for range resizeCh {
			sendSize(conn)
		}
	}()

	done := make(chan struct{})
	go func() {
		pumpServerToStdout(conn)
		close(done)
	}()
	pumpStdinToServer(conn)
	<-done
	return nil
}

// socketLive reports whether a live daemon is listening at sock (not
// just whether the path exists: a crashed daemon can leave a stale
// socket file behind).
func socketLive(sock string) bool {
	conn, err := net.DialTimeout("unix", sock, 200*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// spawnDaemon re-execs the current binary into a detached `__serve`
// child that owns the session from here on: stdio is redirected away
// from this process's terminal and Setsid detaches it from this
// process's controlling terminal and process group, so it survives
// this attach command exiting.
func spawnDaemon(session string) error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve own executable: %w", err)
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()

	cmd := exec.Command(self, "__serve", session)
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	return nil
}

func dialWithRetry(sock string) (net.Conn, error) {
	deadline := time.Now().Add(dialTimeout)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := net.Dial("unix", sock)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("timed out waiting for session socket")
	}
	return nil, lastErr
}

// sendSize reports the attaching terminal's current size; called once
// at attach and again on every SIGWINCH.
func sendSize(conn net.Conn) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return
	}
	msg := ipc.ClientToServerMsg{
		Kind:    ipc.MsgTerminalResize,
		NewSize: ipc.Size{Rows: uint32(rows), Cols: uint32(cols)},
	}
	_ = ipc.WriteFrame(conn, msg.Marshal())
}

// pumpStdinToServer forwards every byte read from stdin to conn as a
// MsgKey frame, until stdin closes (Ctrl-D on the client's own terminal
// doesn't end the session — it's just another byte forwarded to
// whatever's focused — EOF only happens when the terminal itself goes
// away).
func pumpStdinToServer(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			msg := ipc.ClientToServerMsg{Kind: ipc.MsgKey, RawBytes: append([]byte(nil), buf[:n]...)}
			if writeErr := ipc.WriteFrame(conn, msg.Marshal()); writeErr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// pumpServerToStdout reads render/exit frames from conn and writes
// render content straight to stdout until the connection closes or the
// server sends an Exit message.
func pumpServerToStdout(conn net.Conn) {
	for {
		payload, err := ipc.ReadFrame(conn)
		if err != nil {
			return
		}
		msg, err := ipc.UnmarshalServerToClientMsg(payload)
		if err != nil {
			continue
		}
		switch msg.Kind {
		case ipc.MsgRender:
			io.WriteString(os.Stdout, msg.Content)
		case ipc.MsgExit:
			return
		}
	}
}
