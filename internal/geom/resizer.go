package geom

import "sort"

// Span is one pane's extent along a split direction, grouped with the other
// panes that share its perpendicular boundary (a "row" of parallel spans in
// the resizer's grid).
type Span struct {
	Pane      PaneID
	Direction SplitDirection
	Pos       int
	Size      Dimension
	boundary  int // perpendicular-axis boundary this span belongs to, internal bookkeeping
}

// PaneExtent is the resizer's view of one pane: its id, current geometry,
// and whether it participates in a pane stack (stacked panes are validated
// against a minimum stack height before any resize is applied).
type PaneExtent struct {
	Pane      PaneID
	Geom      PaneGeom
	IsStacked bool
	// MinStackHeight is the minimum row count this pane's stack needs
	// (one Fixed(1) header per stacked sibling plus the flexible pane's
	// floor); ignored for non-stacked panes.
	MinStackHeight int
}

// Resizer solves a tab's tiled-pane layout along one split direction at a
// time, the way a real terminal multiplexer lays out rows then columns (or
// vice versa) rather than solving the whole 2D layout in one shot.
type Resizer struct {
	panes []PaneExtent
}

// NewResizer creates a Resizer over the given panes. The slice is read, not
// retained; Layout returns new PaneGeom values rather than mutating Geom in
// place so the caller decides how to commit them.
func NewResizer(panes []PaneExtent) *Resizer {
	return &Resizer{panes: append([]PaneExtent(nil), panes...)}
}

// Layout solves the layout along direction for the given total space and
// returns the resolved geometry for every pane that was part of it. Returns
// ConstraintInfeasible if the space cannot hold the panes at all, or
// PaneSizeUnchanged (with valid, unchanged results) if nothing moved.
func (r *Resizer) Layout(direction SplitDirection, space int) ([]PaneGeom, error) {
	grid := r.gridBoundaries(direction, space)
	if len(grid) == 0 {
		return nil, &ConstraintInfeasible{Direction: direction, Space: space}
	}

	if err := solveGrid(grid, space); err != nil {
		return nil, err
	}

	spans, err := discretizeSpans(grid, space)
	if err != nil {
		return nil, err
	}

	if !r.isLayoutValid(spans) {
		return nil, &ConstraintInfeasible{Direction: direction, Space: space}
	}

	result := r.applySpans(spans, direction)

	changed := false
	for _, p := range r.panes {
		for _, np := range result {
			if np.pane == p.Pane && geomRectChanged(p.Geom, np.geom, direction) {
				changed = true
			}
		}
	}
	geoms := make([]PaneGeom, len(result))
	for i, np := range result {
		geoms[i] = np.geom
	}
	if !changed {
		return geoms, &PaneSizeUnchanged{}
	}
	return geoms, nil
}

func geomRectChanged(old, new PaneGeom, direction SplitDirection) bool {
	if direction == SplitHorizontal {
		return old.X != new.X || old.Cols.AsCells() != new.Cols.AsCells()
	}
	return old.Y != new.Y || old.Rows.AsCells() != new.Rows.AsCells()
}

// gridBoundaries partitions the perpendicular axis into rows of parallel
// spans: step 1 of the algorithm (collect every perpendicular edge of a
// pane-span, the sorted unique set is the partition).
func (r *Resizer) gridBoundaries(direction SplitDirection, space int) [][]Span {
	boundarySet := make(map[int]bool)
	for _, p := range r.panes {
		if direction == SplitHorizontal {
			boundarySet[p.Geom.Y] = true
		} else {
			boundarySet[p.Geom.X] = true
		}
	}
	boundaries := make([]int, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Ints(boundaries)

	grid := make([][]Span, 0, len(boundaries))
	for _, b := range boundaries {
		var row []Span
		for _, p := range r.panes {
			var boundary, pos int
			var size Dimension
			if direction == SplitHorizontal {
				boundary, pos, size = p.Geom.Y, p.Geom.X, p.Geom.Cols
			} else {
				boundary, pos, size = p.Geom.X, p.Geom.Y, p.Geom.Rows
			}
			if boundary == b {
				row = append(row, Span{Pane: p.Pane, Direction: direction, Pos: pos, Size: size, boundary: b})
			}
		}
		if len(row) > 0 {
			sort.Slice(row, func(i, j int) bool { return row[i].Pos < row[j].Pos })
			grid = append(grid, row)
		}
	}
	return grid
}

// solveGrid resolves each row's flexible spans to a float cell count:
// Fixed spans keep their size; Percent spans split the remaining flex
// space (once fixed spans are subtracted) in proportion to their share of
// the row's percent total. This is the
// direct proportional solve the spec allows in place of a full simplex
// solver (see DESIGN.md).
func solveGrid(grid [][]Span, space int) error {
	for rowIdx, row := range grid {
		fixedTotal := 0
		percentTotal := 0.0
		for _, s := range row {
			if s.Size.IsFixed() {
				fixedTotal += s.Size.Fixed
			} else {
				percentTotal += s.Size.Percent
			}
		}
		flexSpace := float64(space - fixedTotal)
		if flexSpace < 0 {
			return &ConstraintInfeasible{Space: space}
		}
		for i, s := range row {
			if s.Size.IsFixed() {
				grid[rowIdx][i].Size = s.Size.WithInner(s.Size.Fixed)
				continue
			}
			var resolved float64
			if percentTotal > 0 {
				resolved = flexSpace * (s.Size.Percent / percentTotal)
			}
			grid[rowIdx][i].Size = s.Size.WithInner(int(resolved + 0.5))
		}
	}
	return nil
}

// discretizeSpans rounds each row's float sizes to integers without gaps or
// overlap: compute the rounding residual, then redistribute it one cell at
// a time across flexible spans ordered by size (largest first when the
// residual is positive so the biggest spans absorb the shortfall first,
// smallest first when negative), preserving a minimum of 1 cell per span.
func discretizeSpans(grid [][]Span, space int) ([]Span, error) {
	var out []Span
	for _, row := range grid {
		roundedTotal := 0
		for _, s := range row {
			roundedTotal += s.Size.Inner
		}
		residual := space - roundedTotal

		flexIdx := make([]int, 0, len(row))
		for i, s := range row {
			if !s.Size.IsFixed() {
				flexIdx = append(flexIdx, i)
			}
		}
		sort.Slice(flexIdx, func(a, b int) bool {
			return row[flexIdx[a]].Size.Inner < row[flexIdx[b]].Size.Inner
		})
		if residual > 0 {
			for i, j := 0, len(flexIdx)-1; i < j; i, j = i+1, j-1 {
				flexIdx[i], flexIdx[j] = flexIdx[j], flexIdx[i]
			}
		}

		step := 1
		if residual < 0 {
			step = -1
		}
		for residual != 0 && len(flexIdx) > 0 {
			moved := false
			for _, idx := range flexIdx {
				if residual == 0 {
					break
				}
				if step < 0 && row[idx].Size.Inner <= 1 {
					continue
				}
				row[idx].Size.Inner += step
				residual -= step
				moved = true
			}
			if !moved {
				return nil, &ConstraintInfeasible{Space: space}
			}
		}

		offset := 0
		for i := range row {
			if row[i].Size.Inner < 1 {
				return nil, &ConstraintInfeasible{Space: space}
			}
			row[i].Pos = offset
			offset += row[i].Size.Inner
		}
		out = append(out, row...)
	}
	return out, nil
}

// isLayoutValid rejects a solved layout outright, without applying any of
// it, if a stacked pane's row span would fall below its stack's minimum
// height. Left as a pre-apply check (rather than clamping) because a
// partially-applied resize would leave the tab in a worse state than the
// one it started in.
func (r *Resizer) isLayoutValid(spans []Span) bool {
	minHeight := make(map[PaneID]int)
	for _, p := range r.panes {
		if p.IsStacked {
			minHeight[p.Pane] = p.MinStackHeight
		}
	}
	for _, s := range spans {
		if s.Direction != SplitVertical {
			continue
		}
		if min, ok := minHeight[s.Pane]; ok && s.Size.Inner < min {
			return false
		}
	}
	return true
}

type namedGeom struct {
	pane PaneID
	geom PaneGeom
}

// applySpans converts solved spans back into PaneGeom updates, carrying
// forward whichever axis the span didn't touch from the pane's prior
// geometry.
func (r *Resizer) applySpans(spans []Span, direction SplitDirection) []namedGeom {
	byID := make(map[PaneID]PaneGeom, len(r.panes))
	for _, p := range r.panes {
		byID[p.Pane] = p.Geom
	}

	out := make([]namedGeom, 0, len(spans))
	for _, s := range spans {
		g := byID[s.Pane]
		if direction == SplitHorizontal {
			g.X = s.Pos
			g.Cols = s.Size
		} else {
			g.Y = s.Pos
			g.Rows = s.Size
		}
		out = append(out, namedGeom{pane: s.Pane, geom: g})
	}
	return out
}
