package grid

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// renderState tracks the SGR colors and flags last emitted by
// Render, so successive calls only emit the escapes needed to transition
// from one cell's style to the next instead of a full SGR reset per cell.
type renderState struct {
	valid     bool
	fg, bg    color.Color
	underline color.Color
	flags     CellFlags
}

// ShouldRender reports whether a render is due: either a cell in the active
// buffer changed since the last Render call, the cursor moved, or a
// viewport clear has been requested.
func (t *Terminal) ShouldRender() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shouldRenderLocked()
}

func (t *Terminal) shouldRenderLocked() bool {
	if t.clearViewportBeforeRendering {
		return true
	}
	if t.activeBuffer.HasDirty() {
		return true
	}
	if !t.lastRenderValid || t.lastRenderRow != t.cursor.Row || t.lastRenderCol != t.cursor.Col {
		return true
	}
	return !t.lastRenderStyleValid || t.lastRenderStyle != t.cursor.Style
}

// SetClearViewportBeforeRendering requests that the next Render call clear
// the pane's viewport before redrawing, used when a pane re-enters view
// after being hidden (e.g. a fullscreen toggle or tab switch) and cannot
// trust the client's existing screen contents.
func (t *Terminal) SetClearViewportBeforeRendering() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearViewportBeforeRendering = true
}

// Render returns a VT output string that brings a client's display in sync
// with the current grid state: absolute cursor positioning plus differential
// SGR, redrawing only what changed since the previous call. Returns ok=false
// when nothing changed, per render()'s "None when nothing changed" contract.
func (t *Terminal) Render() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.shouldRenderLocked() {
		return "", false
	}

	var out strings.Builder

	clearFirst := t.clearViewportBeforeRendering
	t.clearViewportBeforeRendering = false

	var positions []Position
	if clearFirst {
		// Reset SGR before erasing so the client's Erase-in-Display paints
		// every cleared cell in the default background, not whatever
		// attribute happened to be active beforehand; that's what lets the
		// loop below stop each row at its last non-default cell instead of
		// repainting the pane's background all the way to the right margin.
		out.WriteString("\x1b[0m\x1b[2J")
		t.renderSGR = renderState{}
		for row := 0; row < t.activeBuffer.Rows(); row++ {
			lastCol := -1
			for col := 0; col < t.activeBuffer.Cols(); col++ {
				if cell := t.activeBuffer.Cell(row, col); cell != nil && !cell.IsDefault() {
					lastCol = col
				}
			}
			for col := 0; col <= lastCol; col++ {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	} else {
		positions = t.activeBuffer.DirtyCells()
		sort.Slice(positions, func(i, j int) bool { return positions[i].Before(positions[j]) })
	}

	lastRow, lastCol := -1, -1
	for _, pos := range positions {
		cell := t.activeBuffer.Cell(pos.Row, pos.Col)
		if cell == nil || cell.IsWideSpacer() {
			continue
		}

		if pos.Row != lastRow || pos.Col != lastCol+1 {
			fmt.Fprintf(&out, "\x1b[%d;%dH", pos.Row+1, pos.Col+1)
		}
		lastRow, lastCol = pos.Row, pos.Col

		t.writeDiffSGR(&out, cell)

		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}
		out.WriteRune(ch)
		if cell.IsWide() {
			lastCol++
		}
	}

	fmt.Fprintf(&out, "\x1b[%d;%dH", t.cursor.Row+1, t.cursor.Col+1)

	if !t.lastRenderStyleValid || t.lastRenderStyle != t.cursor.Style {
		fmt.Fprintf(&out, "\x1b[%d q", t.cursor.Style.DECSCUSRParam())
	}

	if t.modes&ModeShowCursor != 0 && t.cursor.Visible {
		out.WriteString("\x1b[?25h")
	} else {
		out.WriteString("\x1b[?25l")
	}

	t.activeBuffer.ClearAllDirty()
	t.lastRenderRow, t.lastRenderCol, t.lastRenderValid = t.cursor.Row, t.cursor.Col, true
	t.lastRenderStyle, t.lastRenderStyleValid = t.cursor.Style, true

	return out.String(), true
}

// writeDiffSGR emits only the SGR parameters that changed between the
// previously rendered cell and cell, tracked in t.renderSGR.
func (t *Terminal) writeDiffSGR(out *strings.Builder, cell *Cell) {
	prev := t.renderSGR
	var params []string

	if !prev.valid {
		params = append(params, "0")
	}

	if !prev.valid || !colorsEqual(prev.fg, cell.Fg) {
		params = append(params, sgrColorParam(cell.Fg, true))
	}
	if !prev.valid || !colorsEqual(prev.bg, cell.Bg) {
		params = append(params, sgrColorParam(cell.Bg, false))
	}
	if !prev.valid || !colorsEqual(prev.underline, cell.UnderlineColor) {
		if cell.UnderlineColor != nil {
			params = append(params, sgrUnderlineColorParam(cell.UnderlineColor))
		} else if prev.underline != nil {
			params = append(params, "59")
		}
	}
	if !prev.valid || prev.flags != cell.Flags {
		params = append(params, sgrFlagParams(cell.Flags)...)
	}

	if len(params) > 0 {
		fmt.Fprintf(out, "\x1b[%sm", strings.Join(params, ";"))
	}

	t.renderSGR = renderState{
		valid:     true,
		fg:        cell.Fg,
		bg:        cell.Bg,
		underline: cell.UnderlineColor,
		flags:     cell.Flags,
	}
}

func colorsEqual(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	if ia, ok := a.(*IndexedColor); ok {
		if ib, ok2 := b.(*IndexedColor); ok2 {
			return ia.Index == ib.Index
		}
		return false
	}
	if na, ok := a.(*NamedColor); ok {
		if nb, ok2 := b.(*NamedColor); ok2 {
			return na.Name == nb.Name
		}
		return false
	}
	return ar == br && ag == bg && ab == bb && aa == ba
}

// sgrColorParam renders the SGR parameter sequence for a foreground (38;...)
// or background (48;...) color. Named palette colors 0-15 use the 30-37/90-97
// (40-47/100-107) codes; the default and other special named colors collapse
// to the plain reset codes (39/49).
func sgrColorParam(c color.Color, fg bool) string {
	base := 30
	reset := "39"
	if !fg {
		base = 40
		reset = "49"
	}

	switch v := c.(type) {
	case *NamedColor:
		if v.Name >= 0 && v.Name < 8 {
			return fmt.Sprintf("%d", base+v.Name)
		}
		if v.Name >= 8 && v.Name < 16 {
			return fmt.Sprintf("%d", base+60+(v.Name-8))
		}
		return reset
	case *IndexedColor:
		if v.Index < 8 {
			return fmt.Sprintf("%d", base+v.Index)
		}
		if v.Index < 16 {
			bright := base + 60
			return fmt.Sprintf("%d", bright+(v.Index-8))
		}
		return fmt.Sprintf("%d;5;%d", base+8, v.Index)
	default:
		r, g, b, _ := c.RGBA()
		return fmt.Sprintf("%d;2;%d;%d;%d", base+8, r>>8, g>>8, b>>8)
	}
}

// sgrUnderlineColorParam renders the SGR 58 (set underline color) parameter
// sequence for indexed or truecolor underline colors.
func sgrUnderlineColorParam(c color.Color) string {
	switch v := c.(type) {
	case *IndexedColor:
		return fmt.Sprintf("58;5;%d", v.Index)
	default:
		r, g, b, _ := c.RGBA()
		return fmt.Sprintf("58;2;%d;%d;%d", r>>8, g>>8, b>>8)
	}
}

func sgrFlagParams(flags CellFlags) []string {
	var params []string
	if flags&CellFlagBold != 0 {
		params = append(params, "1")
	}
	if flags&CellFlagDim != 0 {
		params = append(params, "2")
	}
	if flags&CellFlagItalic != 0 {
		params = append(params, "3")
	}
	if flags&CellFlagUnderline != 0 {
		params = append(params, "4")
	}
	if flags&CellFlagBlinkSlow != 0 {
		params = append(params, "5")
	}
	if flags&CellFlagBlinkFast != 0 {
		params = append(params, "6")
	}
	if flags&CellFlagReverse != 0 {
		params = append(params, "7")
	}
	if flags&CellFlagHidden != 0 {
		params = append(params, "8")
	}
	if flags&CellFlagStrike != 0 {
		params = append(params, "9")
	}
	if flags&CellFlagDoubleUnderline != 0 {
		params = append(params, "21")
	}
	return params
}

// AdjustInputToTerminal rewrites client keystrokes that depend on terminal
// mode before they reach the PTY: in application cursor-key mode the arrow
// keys' CSI form is rewritten to its SS3 form, matching what the running
// application expects. All other bytes pass through unchanged.
func (t *Terminal) AdjustInputToTerminal(data []byte) []byte {
	t.mu.RLock()
	appCursor := t.modes&ModeCursorKeys != 0
	t.mu.RUnlock()

	if !appCursor {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if i+2 < len(data) && data[i] == 0x1b && data[i+1] == '[' &&
			(data[i+2] == 'A' || data[i+2] == 'B' || data[i+2] == 'C' || data[i+2] == 'D') {
			out = append(out, 0x1b, 'O', data[i+2])
			i += 2
			continue
		}
		out = append(out, data[i])
	}
	return out
}
