// Package screen is the Tab/Screen orchestrator: it owns every tab and
// pane in a session, runs the single-threaded instruction loop that
// fans out PTY bytes and renders, and holds the focus/mode state
// machine described in spec.md §4.4.
package screen

import (
	"github.com/ambervale/tilemux/grid"
	"github.com/ambervale/tilemux/internal/geom"
	"github.com/ambervale/tilemux/internal/pty"
)

// Pane is the closed `Pane{Terminal,Plugin}` tagged variant from
// spec.md §9: Screen only ever holds this interface, never a concrete
// type, and switches on Kind() where the two need different handling
// (placement and close semantics are shared; render and input are not).
type Pane interface {
	ID() geom.PaneID
	Kind() geom.PaneKind
	ShouldRender() bool
	Render() (string, bool)
	Close()
}

// TerminalPane wraps a grid.Terminal (the VTE grid) with the PTY handle
// that feeds it. This is the "Terminal" of spec.md §3's PaneId variant;
// it is distinct from grid.Terminal, which is the VTE emulator itself.
type TerminalPane struct {
	id       geom.PaneID
	term     *grid.Terminal
	pty      *pty.Handle
	cellSize cellSizeProvider
}

// cellSizeProvider answers a grid.Terminal's CSI 16 t cell-size query with
// whatever pixel dimensions the attached client last reported over the wire
// (ipc.MsgTerminalPixelDimensions), the only place tilemux ever learns a
// client's real font metrics. Zero until a client reports one, which
// grid.Terminal's nil-provider check turns into its own built-in default.
type cellSizeProvider struct {
	width, height int
}

func (c *cellSizeProvider) CellSizePixels() (int, int) { return c.width, c.height }

// NewTerminalPane wraps term and its spawned pty.Handle under id.
func NewTerminalPane(id geom.PaneID, term *grid.Terminal, h *pty.Handle) *TerminalPane {
	p := &TerminalPane{id: id, term: term, pty: h}
	term.SetSizeProvider(&p.cellSize)
	return p
}

// SetCellSizePixels records the client-reported cell size so subsequent
// CSI 16 t queries from the pane's child answer with real font metrics
// instead of the library's 10x20 fallback.
func (p *TerminalPane) SetCellSizePixels(width, height int) {
	p.cellSize.width, p.cellSize.height = width, height
}

// maxPaneTitleCols bounds what Title() returns: OSC 0/1/2 has no length
// limit of its own, but a tab header has a fixed column budget to show
// the name in.
const maxPaneTitleCols = 128

// Title returns the pane's current title, as last set by its child via
// an OSC 0/1/2 sequence, or "" if it never has. Tab.DisplayName falls
// back to this when the tab itself was never explicitly renamed.
func (p *TerminalPane) Title() string {
	return grid.TruncateToWidth(p.term.Title(), maxPaneTitleCols)
}

func (p *TerminalPane) ID() geom.PaneID        { return p.id }
func (p *TerminalPane) Kind() geom.PaneKind    { return geom.PaneKindTerminal }
func (p *TerminalPane) ShouldRender() bool     { return p.term.ShouldRender() }
func (p *TerminalPane) Render() (string, bool) { return p.term.Render() }

// HandleBytes feeds raw PTY output into the grid.
func (p *TerminalPane) HandleBytes(data []byte) {
	p.term.Write(data)
}

// AdjustAndWriteInput rewrites client input for the terminal's current
// modes (e.g. application cursor keys) and writes it to the PTY master
// for the child to consume.
func (p *TerminalPane) AdjustAndWriteInput(data []byte) {
	adjusted := p.term.AdjustInputToTerminal(data)
	p.pty.WriteInput(adjusted)
}

// Resize resizes the pane's grid to rows×cols. The PTY's own window size
// is not changed here.
func (p *TerminalPane) Resize(rows, cols int) {
	p.term.Resize(rows, cols)
}

func (p *TerminalPane) Close() { p.pty.Close() }

// LastExitCode reports the exit status of the pane's most recently
// finished command, from the shell's own OSC 133 D report, and ok=false
// if the shell has never reported one (either no shell-integration
// support, or no command has finished yet).
func (p *TerminalPane) LastExitCode() (code int, ok bool) {
	return p.term.LastExitCode()
}

// Cwd reports the pane's current working directory for cwd inheritance
// by a new pane split off of it (spec.md's spawn contract takes an
// optional working directory; newPane fills it in from the focused
// pane when the caller didn't specify one). The shell's own OSC 7
// report is authoritative when present, since it reflects the child's
// actual `cd` history rather than just where it started; /proc/<pid>/cwd
// is the fallback for shells that never emit OSC 7.
func (p *TerminalPane) Cwd() string {
	if dir := p.term.WorkingDirectoryPath(); dir != "" {
		return dir
	}
	if dir, err := p.pty.ProbeCwd(); err == nil {
		return dir
	}
	return ""
}

// MouseReportingEnabled reports whether the child application has
// requested any mouse reporting mode. §4.6: a decoded mouse event is
// routed to the pane's pty only when this is true; otherwise it's
// reserved for internal focus/scroll handling.
func (p *TerminalPane) MouseReportingEnabled() bool {
	return p.term.HasMode(grid.ModeReportMouseClicks) ||
		p.term.HasMode(grid.ModeReportCellMouseMotion) ||
		p.term.HasMode(grid.ModeReportAllMouseMotion)
}

// WriteRaw writes bytes to the pty verbatim, with no cursor-key-mode
// rewriting: used for mouse reports, which are never affected by
// AdjustInputToTerminal's ESC-O rewrite rule.
func (p *TerminalPane) WriteRaw(data []byte) {
	p.pty.WriteInput(data)
}

// PluginPane is a no-op stand-in for the plugin-runtime boundary:
// spec.md §9's closed Pane variant names it, SPEC_FULL.md's §4.4
// expansion keeps the type so that boundary type-checks end to end, but
// the WASM plugin runtime itself is out of scope (§1).
type PluginPane struct {
	id geom.PaneID
}

// NewPluginPane creates a placeholder plugin pane under id.
func NewPluginPane(id geom.PaneID) *PluginPane { return &PluginPane{id: id} }

func (p *PluginPane) ID() geom.PaneID        { return p.id }
func (p *PluginPane) Kind() geom.PaneKind    { return geom.PaneKindPlugin }
func (p *PluginPane) ShouldRender() bool     { return false }
func (p *PluginPane) Render() (string, bool) { return "", false }
func (p *PluginPane) Close()                 {}
