package screen

import (
	"github.com/ambervale/tilemux/internal/geom"
	"github.com/ambervale/tilemux/internal/input"
	"github.com/ambervale/tilemux/internal/ipc"
	"github.com/ambervale/tilemux/internal/pty"
)

// HandleClientMsg implements ipc.Handler: decoded wire messages are
// translated into ScreenInstructions and enqueued, same as PTY events,
// so all of Screen's actual mutation still happens only on the Run
// goroutine.
func (s *Screen) HandleClientMsg(id ipc.ClientID, msg ipc.ClientToServerMsg) {
	switch msg.Kind {
	case ipc.MsgFirstClientConnected, ipc.MsgAttachClient:
		s.instructions <- Instruction{Kind: InstrClientAttached, Client: id}
	case ipc.MsgDetachSession, ipc.MsgClientExited:
		s.instructions <- Instruction{Kind: InstrClientDetached, Client: id}
	case ipc.MsgTerminalResize:
		s.handleTerminalResize(id, msg.NewSize)
	case ipc.MsgTerminalPixelDimensions:
		s.handlePixelDimensions(id, msg.PixelDims)
	case ipc.MsgKey:
		s.feedKeyInput(id, msg.RawBytes)
	case ipc.MsgKillSession:
		s.instructions <- Instruction{Kind: InstrCloseFocusedPane, Client: id}
	case ipc.MsgAction:
		s.dispatchAction(id, msg.ActionName)
	}
}

// dispatchAction translates a named Action (decoded from a keybinding by
// internal/input, or sent directly by a CLI client) into a
// ScreenInstruction. Unrecognized names are ignored rather than erroring:
// the set of actions SPEC_FULL.md names will keep growing as
// internal/input's keybinding table is filled in.
func (s *Screen) dispatchAction(client ipc.ClientID, name string) {
	switch name {
	case "NewPane":
		s.instructions <- Instruction{Kind: InstrNewPane, Client: client, Spawn: pty.SpawnRequest{}}
	case "NewPaneHorizontal":
		dir := geom.SplitHorizontal
		s.instructions <- Instruction{Kind: InstrNewPane, Client: client, Direction: &dir}
	case "NewPaneVertical":
		dir := geom.SplitVertical
		s.instructions <- Instruction{Kind: InstrNewPane, Client: client, Direction: &dir}
	case "CloseFocus":
		s.instructions <- Instruction{Kind: InstrCloseFocusedPane, Client: client}
	case "ToggleFullscreen":
		s.instructions <- Instruction{Kind: InstrToggleFullscreen, Client: client}
	case "NewTab":
		s.instructions <- Instruction{Kind: InstrNewTab, Client: client}
	case "CloseTab":
		s.instructions <- Instruction{Kind: InstrCloseTab, Client: client}
	case "GoToNextTab":
		s.instructions <- Instruction{Kind: InstrSwitchTabNext, Client: client}
	case "GoToPreviousTab":
		s.instructions <- Instruction{Kind: InstrSwitchTabPrev, Client: client}
	case "MoveFocusUp":
		s.instructions <- Instruction{Kind: InstrMoveFocus, Client: client, Focus: FocusUp}
	case "MoveFocusDown":
		s.instructions <- Instruction{Kind: InstrMoveFocus, Client: client, Focus: FocusDown}
	case "MoveFocusLeft":
		s.instructions <- Instruction{Kind: InstrMoveFocus, Client: client, Focus: FocusLeft}
	case "MoveFocusRight":
		s.instructions <- Instruction{Kind: InstrMoveFocus, Client: client, Focus: FocusRight}
	case "Resize::Increase::Left":
		s.instructions <- Instruction{Kind: InstrResizeFocusedPane, Client: client, Focus: FocusLeft}
	case "Resize::Increase::Right":
		s.instructions <- Instruction{Kind: InstrResizeFocusedPane, Client: client, Focus: FocusRight}
	case "Resize::Increase::Up":
		s.instructions <- Instruction{Kind: InstrResizeFocusedPane, Client: client, Focus: FocusUp}
	case "Resize::Increase::Down":
		s.instructions <- Instruction{Kind: InstrResizeFocusedPane, Client: client, Focus: FocusDown}
	}
}

// ClientDisconnected implements ipc.Handler.
func (s *Screen) ClientDisconnected(id ipc.ClientID) {
	s.instructions <- Instruction{Kind: InstrClientDetached, Client: id}
}

// handleTerminalResize resizes the grid of the client's focused pane to
// the new size; the pane's tracked geometry and its PTY window size are
// left unchanged. A full layout would re-solve every pane's
// geometry via internal/geom.Resizer when the *tab's* size changes;
// this handles the narrower "one client's viewport changed" case the
// wire message actually carries.
func (s *Screen) handleTerminalResize(client ipc.ClientID, size ipc.Size) {
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
	if tp, ok := p.(*TerminalPane); ok {
		tp.Resize(int(size.Rows), int(size.Cols))
	}
}

// handlePixelDimensions records a client's reported cell-pixel size on its
// focused pane, so grid.Terminal.CellSizePixels answers that pane's CSI
// 16 t queries with real font metrics. Like handleTerminalResize, this
// only ever affects the one pane the reporting client currently has
// focused, not the whole tab.
func (s *Screen) handlePixelDimensions(client ipc.ClientID, dims ipc.PixelDimensions) {
	if dims.CharCellWidth == 0 || dims.CharCellHeight == 0 {
		return
	}
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
	if tp, ok := p.(*TerminalPane); ok {
		tp.SetCellSizePixels(int(dims.CharCellWidth), int(dims.CharCellHeight))
	}
}

// feedKeyInput hands raw client bytes to that client's Decoder (§4.6's
// fragment reassembly, bracketed-paste passthrough, and mode-keyed
// keybinding lookup); handleInputActions is the Decoder's dispatch
// callback and runs synchronously inside Feed. It enqueues Instructions
// for named actions and mode switches, and writes key and mouse bytes
// straight to the focused pane's PTY.
func (s *Screen) feedKeyInput(client ipc.ClientID, raw []byte) {
	s.mu.Lock()
	st, ok := s.clients[client]
	s.mu.Unlock()
	if !ok || st.decoder == nil {
		return
	}
	st.decoder.Feed(raw)
}

// handleInputActions translates one Feed call's worth of decoded Actions
// into ScreenInstructions. Called from the client's Decoder, possibly
// from the flush timer's own goroutine rather than whatever called Feed.
// Named actions and mode switches are enqueued; ActionWrite and
// ActionMouse bytes are written to the focused pane's PTY directly via
// writeFocusedPane.
func (s *Screen) handleInputActions(client ipc.ClientID, actions []input.Action) {
	for _, a := range actions {
		switch a.Kind {
		case input.ActionWrite:
			s.writeFocusedPane(client, a.Bytes, false)
		case input.ActionNamed:
			s.dispatchAction(client, a.Name)
		case input.ActionSwitchMode:
			s.instructions <- Instruction{Kind: InstrUpdateMode, Client: client, Mode: modeFromInput(a.ModeArg)}
		case input.ActionMouse:
			s.writeFocusedPane(client, a.Bytes, true)
		case input.ActionNoOp:
		}
	}
}

// writeFocusedPane writes data to client's focused pane's pty. Mouse
// reports are only forwarded when the child application asked for mouse
// reporting (§4.6) and go through verbatim (raw=true); key input always
// goes through AdjustAndWriteInput's cursor-key-mode rewrite.
func (s *Screen) writeFocusedPane(client ipc.ClientID, data []byte, raw bool) {
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
	tp, ok := p.(*TerminalPane)
	if !ok {
		return
	}
	if raw {
		if tp.MouseReportingEnabled() {
			tp.WriteRaw(data)
		}
		return
	}
	tp.AdjustAndWriteInput(data)
}
