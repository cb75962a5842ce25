package render

import (
	"strings"
	"testing"

	"github.com/ambervale/tilemux/grid"
)

func TestCombineSymbolsCommutative(t *testing.T) {
	glyphs := []rune{TopRight, Vertical, Horizontal, TopLeft, BottomRight, BottomLeft,
		VerticalLeft, VerticalRight, HorizontalDown, HorizontalUp, Cross}
	for _, a := range glyphs {
		for _, b := range glyphs {
			ab, okAB := CombineSymbols(a, b)
			ba, okBA := CombineSymbols(b, a)
			if okAB != okBA || ab != ba {
				t.Errorf("CombineSymbols(%c,%c)=%c,%v but CombineSymbols(%c,%c)=%c,%v", a, b, ab, okAB, b, a, ba, okBA)
			}
		}
	}
}

func TestCombineSymbolsCrossIsAbsorbing(t *testing.T) {
	glyphs := []rune{TopRight, Vertical, Horizontal, TopLeft, BottomRight, BottomLeft,
		VerticalLeft, VerticalRight, HorizontalDown, HorizontalUp}
	for _, g := range glyphs {
		got, ok := CombineSymbols(Cross, g)
		if !ok || got != Cross {
			t.Errorf("CombineSymbols(Cross,%c) = %c,%v, want Cross,true", g, got, ok)
		}
	}
}

func TestCombineSymbolsKnownPairs(t *testing.T) {
	cases := []struct {
		a, b, want rune
	}{
		{Horizontal, Vertical, Cross},
		{TopRight, Vertical, VerticalLeft},
		{TopRight, TopLeft, HorizontalDown},
		{BottomRight, BottomLeft, HorizontalUp},
	}
	for _, c := range cases {
		got, ok := CombineSymbols(c.a, c.b)
		if !ok || got != c.want {
			t.Errorf("CombineSymbols(%c,%c) = %c,%v, want %c,true", c.a, c.b, got, ok, c.want)
		}
	}
}

func TestScreenCanvasAddRectDrawsRightAndBottomEdges(t *testing.T) {
	// A single pane never touching the canvas' own right/bottom edge:
	// its right wall is a plain vertical line, its bottom wall a plain
	// horizontal line, and they meet at a bottom-right corner.
	c := NewScreenCanvas(10, 10)
	c.AddRect(Rect{X: 0, Y: 0, Rows: 5, Cols: 5})

	if got, ok := c.chars[[2]int{0, 5}]; !ok || got != Vertical {
		t.Errorf("expected a vertical wall at (0,5), got %c (ok=%v)", got, ok)
	}
	if got, ok := c.chars[[2]int{5, 0}]; !ok || got != Horizontal {
		t.Errorf("expected a horizontal wall at (5,0), got %c (ok=%v)", got, ok)
	}
	if got, ok := c.chars[[2]int{5, 5}]; !ok || got != BottomRight {
		t.Errorf("expected a bottom-right corner at (5,5), got %c (ok=%v)", got, ok)
	}
}

func TestScreenCanvasCombinesSharedWall(t *testing.T) {
	// Two panes stacked vertically on the left column, a third pane
	// filling the right column: the left column's internal horizontal
	// divider runs into the shared vertical wall, producing a junction
	// rather than two independently drawn lines.
	c := NewScreenCanvas(10, 10)
	c.AddRect(Rect{X: 0, Y: 0, Rows: 5, Cols: 5})
	c.AddRect(Rect{X: 0, Y: 5, Rows: 5, Cols: 5})

	got, ok := c.chars[[2]int{5, 5}]
	if !ok {
		t.Fatal("expected a boundary glyph where the two panes' walls meet")
	}
	want, _ := CombineSymbols(BottomRight, Vertical)
	if got != want {
		t.Errorf("expected the combined glyph %c, got %c", want, got)
	}
}

func TestScreenCanvasHighlightsFocusedPaneBorder(t *testing.T) {
	c := NewScreenCanvas(10, 10)
	c.AddRect(Rect{X: 0, Y: 0, Rows: 5, Cols: 5, Focused: true})
	c.AddRect(Rect{X: 0, Y: 5, Rows: 5, Cols: 5})

	out := c.VTEOutput()
	focusEscape := "\x1b[0;" + grid.SGRForeground(grid.FocusBorderColor) + "m"
	if !strings.Contains(out, focusEscape) {
		t.Errorf("expected the focused pane's border to carry %q, got %q", focusEscape, out)
	}

	// The shared wall junction between the focused and unfocused rects
	// still counts as bordering the focused pane, so it keeps the
	// highlight rather than reverting to the plain reset glyph.
	if !c.focused[[2]int{5, 5}] {
		t.Error("expected the junction between the two rects to stay highlighted")
	}
}
