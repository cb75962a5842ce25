// Package render implements the frame-border composition step of the
// render cycle (spec.md §4.7 step 3): drawing box-drawing boundary
// characters around each tiled pane and combining the glyphs where two
// panes' borders touch, e.g. a T-junction where three panes meet.
package render

import (
	"fmt"

	"github.com/ambervale/tilemux/grid"
)

// Boundary glyphs, ported from original_source/src/boundaries.rs's
// boundary_type module.
const (
	TopRight       = '┐'
	Vertical       = '│'
	Horizontal     = '─'
	TopLeft        = '┌'
	BottomRight    = '┘'
	BottomLeft     = '└'
	VerticalLeft   = '┤'
	VerticalRight  = '├'
	HorizontalDown = '┬'
	HorizontalUp   = '┴'
	Cross          = '┼'
)

var combineTable = map[[2]rune]rune{
	{Cross, Cross}: Cross,

	{TopRight, TopRight}:       TopRight,
	{TopRight, Vertical}:       VerticalLeft,
	{TopRight, Horizontal}:     HorizontalDown,
	{TopRight, TopLeft}:        HorizontalDown,
	{TopRight, BottomRight}:    VerticalLeft,
	{TopRight, BottomLeft}:     Cross,
	{TopRight, VerticalLeft}:   VerticalLeft,
	{TopRight, VerticalRight}:  Cross,
	{TopRight, HorizontalDown}: HorizontalDown,
	{TopRight, HorizontalUp}:   Cross,

	{Horizontal, Horizontal}:     Horizontal,
	{Horizontal, Vertical}:       Cross,
	{Horizontal, TopLeft}:        HorizontalDown,
	{Horizontal, BottomRight}:    HorizontalUp,
	{Horizontal, BottomLeft}:     HorizontalUp,
	{Horizontal, VerticalLeft}:   Cross,
	{Horizontal, VerticalRight}:  Cross,
	{Horizontal, HorizontalDown}: HorizontalDown,
	{Horizontal, HorizontalUp}:   HorizontalUp,

	{Vertical, Vertical}:       Vertical,
	{Vertical, TopLeft}:        VerticalRight,
	{Vertical, BottomRight}:    VerticalLeft,
	{Vertical, BottomLeft}:     VerticalRight,
	{Vertical, VerticalLeft}:   VerticalLeft,
	{Vertical, VerticalRight}:  VerticalRight,
	{Vertical, HorizontalDown}: Cross,
	{Vertical, HorizontalUp}:   Cross,

	{TopLeft, TopLeft}:        TopLeft,
	{TopLeft, BottomRight}:    Cross,
	{TopLeft, BottomLeft}:     VerticalRight,
	{TopLeft, VerticalLeft}:   Cross,
	{TopLeft, VerticalRight}:  VerticalRight,
	{TopLeft, HorizontalDown}: HorizontalDown,
	{TopLeft, HorizontalUp}:   Cross,

	{BottomRight, BottomRight}:    BottomRight,
	{BottomRight, BottomLeft}:     HorizontalUp,
	{BottomRight, VerticalLeft}:   VerticalLeft,
	{BottomRight, VerticalRight}:  Cross,
	{BottomRight, HorizontalDown}: Cross,
	{BottomRight, HorizontalUp}:   HorizontalUp,

	{BottomLeft, BottomLeft}:     BottomLeft,
	{BottomLeft, VerticalLeft}:   Cross,
	{BottomLeft, VerticalRight}:  VerticalRight,
	{BottomLeft, HorizontalDown}: Cross,
	{BottomLeft, HorizontalUp}:   HorizontalUp,

	{VerticalLeft, VerticalLeft}:   VerticalLeft,
	{VerticalLeft, VerticalRight}:  Cross,
	{VerticalLeft, HorizontalDown}: Cross,
	{VerticalLeft, HorizontalUp}:   HorizontalUp,

	{VerticalRight, VerticalRight}:  VerticalRight,
	{VerticalRight, HorizontalDown}: Cross,
	{VerticalRight, HorizontalUp}:   Cross,

	{HorizontalDown, HorizontalDown}: HorizontalDown,
	{HorizontalDown, HorizontalUp}:   Cross,

	{HorizontalUp, HorizontalUp}: HorizontalUp,
}

// CombineSymbols returns the single boundary glyph that results from two
// boundary lines crossing at the same cell, e.g. CombineSymbols('─',
// '│') == '┼'. Ok is false if neither glyph is a recognized boundary
// character. The underlying table is upper-triangular; unmatched pairs
// are retried swapped, making CombineSymbols commutative by construction
// and Cross absorbing (Cross combined with anything is Cross).
func CombineSymbols(a, b rune) (rune, bool) {
	if a == Cross || b == Cross {
		other := a
		if a == Cross {
			other = b
		}
		if _, known := combineTable[[2]rune{other, other}]; known {
			return Cross, true
		}
	}
	if v, ok := combineTable[[2]rune{a, b}]; ok {
		return v, true
	}
	if v, ok := combineTable[[2]rune{b, a}]; ok {
		return v, true
	}
	return 0, false
}

// Rect is a pane's cell-space rectangle, the minimal shape
// ScreenCanvas.AddRect needs. Focused marks the rect as the client's
// currently active pane, so its edges are drawn in grid.FocusBorderColor
// instead of the default reset style.
type Rect struct {
	X, Y, Rows, Cols int
	Focused          bool
}

// ScreenCanvas accumulates boundary glyphs for a tab's tiled panes and
// renders them as a sequence of cursor-position + character writes, to
// be appended after the panes' own render output.
type ScreenCanvas struct {
	rows, cols int
	chars      map[[2]int]rune
	focused    map[[2]int]bool
}

// NewScreenCanvas creates a canvas sized to a tab's content area.
func NewScreenCanvas(rows, cols int) *ScreenCanvas {
	return &ScreenCanvas{rows: rows, cols: cols, chars: make(map[[2]int]rune), focused: make(map[[2]int]bool)}
}

// AddRect draws rect's right and bottom edges into the canvas, combining
// with whatever boundary glyph already occupies a cell. Edges that sit
// on the canvas' own right/bottom edge are skipped, since nothing needs
// a border against the screen edge itself. A cell that borders the
// focused pane stays highlighted even where a later, unfocused rect's
// edge lands on the same junction — losing the highlight at the one
// corner where panes meet would be a worse visual than a shared glyph
// rendered in the focus color.
func (c *ScreenCanvas) AddRect(rect Rect) {
	if rect.X+rect.Cols < c.cols {
		x := rect.X + rect.Cols
		start := rect.Y
		if start != 0 {
			start--
		}
		end := rect.Y + rect.Rows
		if end != c.rows {
			end++
		}
		for row := start; row < end; row++ {
			glyph := Vertical
			if row == start && row != 0 {
				glyph = TopRight
			} else if row == end-1 && row != c.rows-1 {
				glyph = BottomRight
			}
			c.set(row, x, glyph, rect.Focused)
		}
	}
	if rect.Y+rect.Rows < c.rows {
		y := rect.Y + rect.Rows
		start := rect.X
		if start != 0 {
			start--
		}
		end := rect.X + rect.Cols
		if end != c.cols {
			end++
		}
		for col := start; col < end; col++ {
			glyph := Horizontal
			if col == start && col != 0 {
				glyph = BottomLeft
			} else if col == end-1 && col != c.cols-1 {
				glyph = BottomRight
			}
			c.set(y, col, glyph, rect.Focused)
		}
	}
}

func (c *ScreenCanvas) set(row, col int, glyph rune, focused bool) {
	key := [2]int{row, col}
	if existing, ok := c.chars[key]; ok {
		if combined, ok := CombineSymbols(existing, glyph); ok {
			c.chars[key] = combined
			if focused {
				c.focused[key] = true
			}
			return
		}
	}
	c.chars[key] = glyph
	if focused {
		c.focused[key] = true
	}
}

// VTEOutput renders every accumulated boundary glyph as a "move cursor,
// reset style, write rune" escape sequence, matching the teacher's reset-
// then-render convention elsewhere in the grid package so border glyphs
// never inherit a neighboring pane's lingering SGR state. Glyphs bordering
// the focused pane get grid.FocusBorderColor instead of the plain reset.
func (c *ScreenCanvas) VTEOutput() string {
	var out string
	for coords, glyph := range c.chars {
		row, col := coords[0], coords[1]
		if c.focused[coords] {
			out += fmt.Sprintf("\x1b[%d;%dH\x1b[0;%sm%c", row+1, col+1, grid.SGRForeground(grid.FocusBorderColor), glyph)
			continue
		}
		out += fmt.Sprintf("\x1b[%d;%dH\x1b[m%c", row+1, col+1, glyph)
	}
	return out
}
