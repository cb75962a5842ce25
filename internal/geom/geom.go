// Package geom implements tilemux's pane geometry model and the
// constraint-based resizer that keeps a tab's tiled panes exactly
// partitioning its content area.
package geom

import "fmt"

// PaneKind distinguishes the two kinds of pane a PaneID can name.
type PaneKind uint8

const (
	PaneKindTerminal PaneKind = iota
	PaneKindPlugin
)

// PaneID is a tagged identifier: either a terminal pane or a plugin pane.
// Unique within a session for the pane's lifetime; ids are never reused
// after a pane is destroyed.
type PaneID struct {
	Kind PaneKind
	ID   uint32
}

func (p PaneID) String() string {
	if p.Kind == PaneKindPlugin {
		return fmt.Sprintf("plugin(%d)", p.ID)
	}
	return fmt.Sprintf("terminal(%d)", p.ID)
}

// DimensionKind distinguishes a Dimension's sizing rule.
type DimensionKind uint8

const (
	DimensionPercent DimensionKind = iota
	DimensionFixed
)

// Dimension is either a percentage of the available flexible space or a
// fixed cell count. Inner carries the concrete cell count last computed by
// the resizer; it is meaningless until a resize has run at least once.
type Dimension struct {
	Kind    DimensionKind
	Percent float64 // 0..=100, meaningful when Kind == DimensionPercent
	Fixed   int     // meaningful when Kind == DimensionFixed
	Inner   int     // resolved cell count, set by the resizer
}

// Percent constructs a percentage-sized Dimension.
func Percent(p float64) Dimension { return Dimension{Kind: DimensionPercent, Percent: p} }

// Fixed constructs a fixed-size Dimension.
func Fixed(n int) Dimension { return Dimension{Kind: DimensionFixed, Fixed: n, Inner: n} }

// IsFixed reports whether the dimension has a fixed cell count.
func (d Dimension) IsFixed() bool { return d.Kind == DimensionFixed }

// AsCells returns the dimension's resolved cell count.
func (d Dimension) AsCells() int { return d.Inner }

// WithInner returns a copy of d with its resolved cell count set to n.
func (d Dimension) WithInner(n int) Dimension {
	d.Inner = n
	return d
}

// PaneGeom is a pane's position and size within its tab, expressed as
// Dimensions so percentage-based panes can be resolved against whatever
// space their tab currently has.
type PaneGeom struct {
	X, Y       int
	Rows, Cols Dimension
	IsStacked  bool
	IsPinned   bool
}

// Rect returns the geometry's resolved cell rectangle, valid once Rows/Cols
// have been through the resizer.
func (g PaneGeom) Rect() (x, y, rows, cols int) {
	return g.X, g.Y, g.Rows.AsCells(), g.Cols.AsCells()
}

// SplitDirection is the axis along which a set of panes are laid out.
type SplitDirection uint8

const (
	SplitHorizontal SplitDirection = iota // panes side by side, spans run along X
	SplitVertical                         // panes stacked top to bottom, spans run along Y
)

// ConstraintKind names the shape of a SwapLayouts constraint.
type ConstraintKind uint8

const (
	ConstraintNone ConstraintKind = iota
	ConstraintMaxPanes
	ConstraintMinPanes
	ConstraintExactPanes
)

// Constraint gates which pane counts a swap-layout entry applies to.
type Constraint struct {
	Kind ConstraintKind
	N    int
}

// Matches reports whether a layout guarded by c may be applied to a tab
// currently showing paneCount visible panes.
func (c Constraint) Matches(paneCount int) bool {
	switch c.Kind {
	case ConstraintMaxPanes:
		return paneCount <= c.N
	case ConstraintMinPanes:
		return paneCount >= c.N
	case ConstraintExactPanes:
		return paneCount == c.N
	default:
		return true
	}
}

// ConstraintInfeasible is returned when a layout cannot fit in the space
// available at all (e.g. more fixed-size spans than total space).
type ConstraintInfeasible struct {
	Direction SplitDirection
	Space     int
}

func (e *ConstraintInfeasible) Error() string {
	return fmt.Sprintf("geom: layout infeasible for %d cells along %v", e.Space, e.Direction)
}

// PaneSizeUnchanged is an informational error: the resizer ran to
// completion but produced cell-identical output. Callers decide whether
// that's user-visible.
type PaneSizeUnchanged struct{}

func (e *PaneSizeUnchanged) Error() string { return "geom: pane sizes unchanged" }
