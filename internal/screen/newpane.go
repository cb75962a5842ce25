package screen

import (
	"github.com/ambervale/tilemux/grid"
	"github.com/ambervale/tilemux/internal/geom"
	"github.com/ambervale/tilemux/internal/ipc"
	"github.com/ambervale/tilemux/internal/pty"
)

// SpawnInitialPane spawns a session's very first pane directly into
// tabIdx, with no client context required: used once by cmd/tilemux's
// daemon startup (internal/cli/serve.go) right after a fresh session's
// first tab is created, before any client has attached, so there's
// already a shell running by the time the first attach arrives. Only
// valid while tabIdx is still empty — AddPane's first-pane rule is what
// makes the zero-value focused/direction arguments harmless here.
func (s *Screen) SpawnInitialPane(tabIdx int, req pty.SpawnRequest) error {
	s.mu.Lock()
	tab := s.tabs[tabIdx]
	s.mu.Unlock()

	id := tab.NextPaneID(geom.PaneKindTerminal)
	term := grid.New(grid.WithSize(tab.Rows, tab.Cols))

	h, err := s.ptyMgr.SpawnTerminal(id, req, tab.Rows, tab.Cols)
	if err != nil {
		return err
	}

	pane := NewTerminalPane(id, term, h)
	if _, err := tab.AddPane(pane, geom.PaneID{}, nil); err != nil {
		h.Close()
		return err
	}

	s.RegisterPane(tabIdx, id)
	return nil
}

// newPane spawns a PTY-backed terminal pane in the client's active tab
// and places it per Tab.AddPane's rule, then registers it so PtyBytes
// and Render events route to it.
func (s *Screen) newPane(client ipc.ClientID, direction *geom.SplitDirection, req pty.SpawnRequest) {
	s.mu.Lock()
	st, ok := s.clients[client]
	if !ok {
		s.mu.Unlock()
		return
	}
	tabIdx := st.tabIndex
	tab := s.tabs[tabIdx]
	focused := st.focused
	s.mu.Unlock()

	if req.Cwd == "" {
		if p, found := tab.Pane(focused); found {
			if tp, ok := p.(*TerminalPane); ok {
				req.Cwd = tp.Cwd()
			}
		}
	}

	id := tab.NextPaneID(geom.PaneKindTerminal)

	term := grid.New(grid.WithSize(tab.Rows, tab.Cols))

	h, err := s.ptyMgr.SpawnTerminal(id, req, tab.Rows, tab.Cols)
	if err != nil {
		return
	}

	pane := NewTerminalPane(id, term, h)
	placedGeom, err := tab.AddPane(pane, focused, direction)
	if err != nil {
		h.Close()
		return
	}
	pane.Resize(placedGeom.Rows.AsCells(), placedGeom.Cols.AsCells())

	s.RegisterPane(tabIdx, id)

	s.mu.Lock()
	st.focused = id
	s.mu.Unlock()
}

// newTab creates an empty tab sized to match the session's current
// tabs (or a default if this is the first) and switches client to it.
func (s *Screen) newTab(client ipc.ClientID, name string) {
	s.mu.Lock()
	rows, cols := 24, 80
	if len(s.tabs) > 0 {
		rows, cols = s.tabs[0].Rows, s.tabs[0].Cols
	}
	s.mu.Unlock()

	idx := s.AddTab(name, rows, cols)

	s.mu.Lock()
	st, ok := s.clients[client]
	if ok {
		st.tabIndex = idx
	}
	s.mu.Unlock()
}

// closeTab tears down every PTY-backed pane in the tab at idx via
// pty.Manager.CloseTab (spec.md's session-teardown path, narrowed to a
// single tab), then removes the tab's bookkeeping. Any client whose
// active tab was idx moves to tab 0; closing the last tab is a no-op
// here since session-level teardown is cmd/tilemux's job.
func (s *Screen) closeTab(idx int) {
	s.mu.Lock()
	if idx < 0 || idx >= len(s.tabs) || len(s.tabs) == 1 {
		s.mu.Unlock()
		return
	}
	tab := s.tabs[idx]
	var panes []geom.PaneID
	for id := range tab.Panes() {
		panes = append(panes, id)
		delete(s.paneTab, id)
	}
	s.mu.Unlock()

	s.ptyMgr.CloseTab(panes)

	s.mu.Lock()
	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	for id, t := range s.paneTab {
		if t > idx {
			s.paneTab[id] = t - 1
		}
	}
	for _, st := range s.clients {
		if st.tabIndex == idx {
			st.tabIndex = 0
		} else if st.tabIndex > idx {
			st.tabIndex--
		}
	}
	s.mu.Unlock()
}

// resizeFocusedPane handles a ModeResize keystroke's effect: grows or
// shrinks the focused pane along dir by one cell. A full implementation
// would run geom.Resizer's stack/swap-layout solve to redistribute the
// released or absorbed cells across every affected sibling; this only
// adjusts the focused pane's own tracked geometry and grid size (the PTY
// window size is not changed).
func (s *Screen) resizeFocusedPane(client ipc.ClientID, dir FocusDirection) {
	s.mu.Lock()
	st, ok := s.clients[client]
	s.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	tab := s.tabs[st.tabIndex]
	p, found := tab.Pane(st.focused)
	s.mu.Unlock()
	if !found {
		return
	}

	g := tab.Geom(st.focused)
	rows, cols := g.Rows.AsCells(), g.Cols.AsCells()
	switch dir {
	case FocusLeft:
		cols--
	case FocusRight:
		cols++
	case FocusUp:
		rows--
	case FocusDown:
		rows++
	}
	if rows < minSplitRows || cols < minSplitCols {
		return
	}
	if tp, ok := p.(*TerminalPane); ok {
		tp.Resize(rows, cols)
	}
	g.Rows, g.Cols = geom.Fixed(rows), geom.Fixed(cols)
	tab.SetGeom(st.focused, g)
}
