package pty

import "github.com/ambervale/tilemux/internal/geom"

// ClosePane kills the pane's child (SIGKILL after the SIGINT grace
// window) and waits for it to be reaped. Idempotent: closing a pane
// that's already gone, or closing it twice, is a no-op.
func (m *Manager) ClosePane(pane geom.PaneID) {
	m.mu.Lock()
	h, ok := m.handles[pane]
	m.mu.Unlock()
	if !ok {
		return
	}
	h.kill()
	<-h.done
}

// CloseTab closes every pane in panes, in order.
func (m *Manager) CloseTab(panes []geom.PaneID) {
	for _, p := range panes {
		m.ClosePane(p)
	}
}

// Close closes every pane the manager still owns. The manager-level
// analogue of the original's Drop impl.
func (m *Manager) Close() {
	m.mu.Lock()
	panes := make([]geom.PaneID, 0, len(m.handles))
	for p := range m.handles {
		panes = append(panes, p)
	}
	m.mu.Unlock()

	m.CloseTab(panes)
}
