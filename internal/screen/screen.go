package screen

import (
	"sync"

	"github.com/ambervale/tilemux/internal/geom"
	"github.com/ambervale/tilemux/internal/input"
	"github.com/ambervale/tilemux/internal/ipc"
	"github.com/ambervale/tilemux/internal/pty"
	"github.com/ambervale/tilemux/internal/render"
)

// InstructionKind tags a ScreenInstruction variant (spec.md §4.4's event
// intake set).
type InstructionKind int

const (
	InstrPtyBytes InstructionKind = iota
	InstrRender
	InstrNewPane
	InstrResizeFocusedPane
	InstrMoveFocus
	InstrCloseFocusedPane
	InstrClosePane
	InstrToggleFullscreen
	InstrNewTab
	InstrCloseTab
	InstrSwitchTabNext
	InstrSwitchTabPrev
	InstrClientAttached
	InstrClientDetached
	InstrUpdateMode
)

// FocusDirection is the direction argument to MoveFocus.
type FocusDirection int

const (
	FocusUp FocusDirection = iota
	FocusDown
	FocusLeft
	FocusRight
)

// Instruction is one event on Screen's intake queue. Only the fields
// relevant to Kind are populated.
type Instruction struct {
	Kind      InstructionKind
	Client    ipc.ClientID
	Pane      geom.PaneID
	Bytes     []byte
	Direction *geom.SplitDirection
	Focus     FocusDirection
	Mode      Mode
	Spawn     pty.SpawnRequest
	TabName   string
}

// clientState is the per-client focus/mode/viewport state the Screen
// loop tracks.
type clientState struct {
	tabIndex int
	focused  geom.PaneID
	mode     Mode
	decoder  *input.Decoder
}

// Screen is the single-threaded cooperative event loop that owns every
// tab and pane in a session. All mutation happens from the goroutine
// running Run; every other method either enqueues an Instruction or
// (for the EventSink/Handler callbacks PTY and IPC invoke from their own
// goroutines) does the same.
type Screen struct {
	sessionName string
	ptyMgr      *pty.Manager
	ipcSrv      *ipc.Server

	instructions chan Instruction

	mu       sync.Mutex // guards the fields below; Run is the only reader/writer otherwise
	tabs     []*Tab
	paneTab  map[geom.PaneID]int
	clients  map[ipc.ClientID]*clientState
	framesOn bool
}

// New creates a Screen for sessionName. ptyMgr and ipcSrv are wired in
// by the caller (cmd/tilemux) after both are constructed, since Screen
// is what each of them calls back into; either may be passed nil and
// filled in later with SetTransport, since a pty.Manager/ipc.Server
// can't itself be constructed until the Screen that is their
// EventSink/Handler already exists.
func New(sessionName string, ptyMgr *pty.Manager, ipcSrv *ipc.Server) *Screen {
	return &Screen{
		sessionName:  sessionName,
		ptyMgr:       ptyMgr,
		ipcSrv:       ipcSrv,
		instructions: make(chan Instruction, 256),
		paneTab:      make(map[geom.PaneID]int),
		clients:      make(map[ipc.ClientID]*clientState),
		framesOn:     true,
	}
}

// SetTransport wires a Screen constructed with nil ptyMgr/ipcSrv (see
// New) once both are built. Must be called before Run.
func (s *Screen) SetTransport(ptyMgr *pty.Manager, ipcSrv *ipc.Server) {
	s.ptyMgr = ptyMgr
	s.ipcSrv = ipcSrv
}

// Run consumes instructions until the channel is closed. Intended to
// run on its own goroutine for the session's lifetime.
func (s *Screen) Run() {
	for instr := range s.instructions {
		s.dispatch(instr)
	}
}

// Stop closes the instruction channel, ending Run's loop after it
// drains whatever's already queued.
func (s *Screen) Stop() {
	close(s.instructions)
}

func (s *Screen) dispatch(instr Instruction) {
	switch instr.Kind {
	case InstrPtyBytes:
		s.handlePtyBytes(instr.Pane, instr.Bytes)
	case InstrRender:
		s.renderTabOwning(instr.Pane)
	case InstrNewPane:
		s.newPane(instr.Client, instr.Direction, instr.Spawn)
	case InstrResizeFocusedPane:
		s.resizeFocusedPane(instr.Client, instr.Focus)
	case InstrNewTab:
		s.newTab(instr.Client, instr.TabName)
	case InstrCloseTab:
		s.mu.Lock()
		st, ok := s.clients[instr.Client]
		s.mu.Unlock()
		if ok {
			s.closeTab(st.tabIndex)
		}
	case InstrCloseFocusedPane:
		s.closeFocusedPane(instr.Client)
	case InstrClosePane:
		s.mu.Lock()
		idx, ok := s.paneTab[instr.Pane]
		s.mu.Unlock()
		if ok {
			s.closePane(idx, instr.Pane)
		}
	case InstrToggleFullscreen:
		s.toggleFullscreen(instr.Client)
	case InstrSwitchTabNext:
		s.switchTab(instr.Client, 1)
	case InstrSwitchTabPrev:
		s.switchTab(instr.Client, -1)
	case InstrClientAttached:
		s.attachClient(instr.Client)
	case InstrClientDetached:
		s.detachClient(instr.Client)
	case InstrUpdateMode:
		s.setMode(instr.Client, instr.Mode)
	case InstrMoveFocus:
		s.moveFocus(instr.Client, instr.Focus)
	}
}

// PtyBytes implements pty.EventSink: called from a PTY stream goroutine,
// so it only ever enqueues — Screen's actual state mutation always
// happens on the Run goroutine.
func (s *Screen) PtyBytes(pane geom.PaneID, data []byte) {
	cp := append([]byte(nil), data...)
	s.instructions <- Instruction{Kind: InstrPtyBytes, Pane: pane, Bytes: cp}
}

// Render implements pty.EventSink.
func (s *Screen) Render(pane geom.PaneID) {
	s.instructions <- Instruction{Kind: InstrRender, Pane: pane}
}

// ClosePane implements pty.EventSink: the pane's child exited on its
// own (not via a user-initiated close); tear down its Screen-side state
// too.
func (s *Screen) ClosePane(pane geom.PaneID) {
	s.instructions <- Instruction{Kind: InstrClosePane, Pane: pane}
}

func (s *Screen) handlePtyBytes(pane geom.PaneID, data []byte) {
	s.mu.Lock()
	idx, ok := s.paneTab[pane]
	s.mu.Unlock()
	if !ok {
		return
	}
	p, ok := s.tabs[idx].Pane(pane)
	if !ok {
		return
	}
	tp, ok := p.(*TerminalPane)
	if !ok {
		return
	}
	tp.HandleBytes(data)
}

// renderTabOwning runs the render cycle (spec.md §4.7 steps 1,2,4,5) for
// whichever tab owns pane, broadcasting the result to every client whose
// active tab is that one.
func (s *Screen) renderTabOwning(pane geom.PaneID) {
	s.mu.Lock()
	idx, ok := s.paneTab[pane]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.renderTab(idx)
}

func (s *Screen) renderTab(idx int) {
	s.mu.Lock()
	tab := s.tabs[idx]
	framesOn := s.framesOn
	s.mu.Unlock()

	var out string
	any := false
	for _, p := range tab.Panes() {
		if !p.ShouldRender() {
			continue
		}
		content, changed := p.Render()
		if changed {
			out += content
			any = true
		}
	}
	if !any {
		return
	}

	// §4.7 step 3: compose frame borders where tiled panes meet, skipped
	// entirely in fullscreen (nothing to border against) or with frames
	// disabled.
	if framesOn && !tab.IsFullscreen() {
		// Every client attached to this tab shares one rendered frame
		// (like the rest of this render cycle), so the focus highlight
		// uses whichever attached client's focused pane is found first
		// rather than drawing a separate frame per client.
		s.mu.Lock()
		var focused geom.PaneID
		for _, st := range s.clients {
			if st.tabIndex == idx {
				focused = st.focused
				break
			}
		}
		s.mu.Unlock()

		canvas := render.NewScreenCanvas(tab.Rows, tab.Cols)
		for id := range tab.Panes() {
			g := tab.Geom(id)
			canvas.AddRect(render.Rect{X: g.X, Y: g.Y, Rows: g.Rows.AsCells(), Cols: g.Cols.AsCells(), Focused: id == focused})
		}
		out += canvas.VTEOutput()
	}

	if out == "" {
		return
	}

	s.mu.Lock()
	var targets []ipc.ClientID
	for id, st := range s.clients {
		if st.tabIndex == idx {
			targets = append(targets, id)
		}
	}
	s.mu.Unlock()

	for _, id := range targets {
		s.ipcSrv.Send(id, ipc.ServerToClientMsg{Kind: ipc.MsgRender, Content: out})
	}
}

func (s *Screen) closeFocusedPane(client ipc.ClientID) {
	s.mu.Lock()
	st, ok := s.clients[client]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.closePane(st.tabIndex, st.focused)
}

func (s *Screen) closePane(tabIdx int, pane geom.PaneID) {
	s.mu.Lock()
	tab := s.tabs[tabIdx]
	delete(s.paneTab, pane)
	s.mu.Unlock()
	tab.ClosePane(pane)
}

func (s *Screen) toggleFullscreen(client ipc.ClientID) {
	s.mu.Lock()
	st, ok := s.clients[client]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.tabs[st.tabIndex].ToggleFullscreen(st.focused)
}

func (s *Screen) switchTab(client ipc.ClientID, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.clients[client]
	if !ok || len(s.tabs) == 0 {
		return
	}
	n := len(s.tabs)
	st.tabIndex = ((st.tabIndex+delta)%n + n) % n
}

func (s *Screen) attachClient(client ipc.ClientID) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		s.mu.Unlock()
		return
	}
	st := &clientState{mode: ModeNormal}
	s.clients[client] = st
	s.mu.Unlock()

	st.decoder = input.NewDecoder(
		func() input.Mode { return modeToInput(s.clientMode(client)) },
		func(actions []input.Action) { s.handleInputActions(client, actions) },
	)
}

// clientMode reads client's current mode; used by its Decoder's modeFn
// so a mode switch made mid-buffer is visible to the very next key
// decoded from that same Feed call.
func (s *Screen) clientMode(client ipc.ClientID) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.clients[client]; ok {
		return st.mode
	}
	return ModeNormal
}

func (s *Screen) detachClient(client ipc.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
}

func (s *Screen) setMode(client ipc.ClientID, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.clients[client]; ok {
		st.mode = mode
	}
}

// moveFocus is a placeholder directional-focus search: real geometric
// adjacency (nearest pane whose edge touches the focused pane's edge in
// the given direction) needs the resolved PaneGeom rectangles: wiring
// that through is a NewPane/Resize follow-up, tracked rather than faked
// here.
func (s *Screen) moveFocus(client ipc.ClientID, dir FocusDirection) {
	_ = dir
}

// RegisterPane wires a freshly spawned pane into tabIdx's owning-tab
// index so PtyBytes/Render events can route to it.
func (s *Screen) RegisterPane(tabIdx int, pane geom.PaneID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paneTab[pane] = tabIdx
}

// AddTab appends a new, empty tab and returns its index.
func (s *Screen) AddTab(name string, rows, cols int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.tabs)
	s.tabs = append(s.tabs, NewTab(uint32(idx), name, rows, cols))
	return idx
}

// Tab returns the tab at idx.
func (s *Screen) Tab(idx int) *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[idx]
}

// Enqueue pushes an arbitrary instruction onto the intake queue from
// outside the package. Decoded input Actions do not go through it:
// handleInputActions sends them to the queue directly.
func (s *Screen) Enqueue(instr Instruction) {
	s.instructions <- instr
}
