package pty

import (
	"errors"
	"os"
	"time"
)

// readChunk is the max bytes read from a pane's PTY master per read,
// per the spec's "read up to 64 KiB at a time" stream loop.
const readChunk = 64 * 1024

// renderCoalesceWindow bounds worst-case inter-render latency: once this
// much time has elapsed since the last emitted Render, the next chunk
// of bytes immediately triggers one rather than being coalesced.
const renderCoalesceWindow = 30 * time.Millisecond

// eagainSleep is how long the loop backs off after a read that returned
// no bytes without hitting EOF (this package's stand-in for POSIX
// EAGAIN, surfaced in Go as a read-deadline timeout — see the package
// doc comment on streamTerminalBytes).
const eagainSleep = 10 * time.Millisecond

// idlePoll bounds how long a read blocks when no render is pending, so
// the loop still notices pane-closed cancellation promptly. Rust's
// tokio::select! lets an async read race a cancellation future
// directly; a blocking os.File read can't, so this is the periodic
// wakeup that plays the same role.
const idlePoll = 200 * time.Millisecond

// streamTerminalBytes is the per-pane stream loop: read PTY output,
// forward it as PtyBytes, and apply the render-coalescing rule. It is
// the single place a pane's ClosePane event is emitted and the single
// place its Handle is reaped, regardless of whether the pane's child
// exited on its own or was killed out from under it.
func (m *Manager) streamTerminalBytes(h *Handle) {
	buf := make([]byte, readChunk)
	lastRender := time.Now()
	pendingRender := false

	for {
		select {
		case <-h.cancel:
			h.kill()
			m.finishPane(h)
			return
		default:
		}

		deadline := idlePoll
		if pendingRender {
			deadline = eagainSleep
		}
		h.master.SetReadDeadline(time.Now().Add(deadline))

		n, err := h.master.Read(buf)
		if n > 0 {
			m.sink.PtyBytes(h.Pane, buf[:n])
			if time.Since(lastRender) > renderCoalesceWindow {
				m.sink.Render(h.Pane)
				lastRender = time.Now()
				pendingRender = false
			} else {
				pendingRender = true
			}
			continue
		}

		if isTimeout(err) {
			// Zero bytes, not EOF: this read loop's EAGAIN.
			if pendingRender {
				m.sink.Render(h.Pane)
				lastRender = time.Now()
				pendingRender = false
			}
			continue
		}

		// EOF, or any other read error (e.g. master closed under us by
		// kill()): the pane is gone either way.
		h.kill()
		m.finishPane(h)
		return
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

// finishPane emits ClosePane once and drops the pane from the manager's
// table. Safe to call even if err is just a clean EOF.
func (m *Manager) finishPane(h *Handle) {
	m.mu.Lock()
	if _, ok := m.handles[h.Pane]; ok {
		delete(m.handles, h.Pane)
	} else {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.sink.ClosePane(h.Pane)
	close(h.done)
}
