package screen

import (
	"errors"
	"fmt"

	"github.com/ambervale/tilemux/internal/geom"
)

// ErrNoRoom is returned when a directional split can't satisfy the
// minimum split size.
var ErrNoRoom = errors.New("screen: no room for a new pane in that direction")

// minSplitRows/minSplitCols is the `min_split ≥ 5×5` rule: a directional
// split is refused if the resulting pane would be smaller than this.
const (
	minSplitRows = 5
	minSplitCols = 5
)

// Tab owns one tab's panes, their geometry, and fullscreen/suppression
// state. Panes are referenced by geom.PaneID in maps, never by pointer
// from one pane to another, per spec.md §9's no-bidirectional-pointers
// guidance.
type Tab struct {
	Index uint32
	Name  string

	Rows, Cols int

	panes           map[geom.PaneID]Pane
	geoms           map[geom.PaneID]geom.PaneGeom
	nextID          uint32
	fullscreen      *geom.PaneID
	preFullscreen   geom.PaneGeom
	suppressedPanes map[geom.PaneID]geom.PaneGeom

	SwapLayouts *geom.SwapLayoutEntries
}

// NewTab creates an empty tab sized rows×cols.
func NewTab(index uint32, name string, rows, cols int) *Tab {
	return &Tab{
		Index:           index,
		Name:            name,
		Rows:            rows,
		Cols:            cols,
		panes:           make(map[geom.PaneID]Pane),
		geoms:           make(map[geom.PaneID]geom.PaneGeom),
		suppressedPanes: make(map[geom.PaneID]geom.PaneGeom),
	}
}

// NextPaneID allocates the next terminal pane id in this tab's id space.
// Ids are per-session in the real thing; kept per-tab here for
// simplicity since nothing in SPEC_FULL.md requires cross-tab id reuse
// detection.
func (t *Tab) NextPaneID(kind geom.PaneKind) geom.PaneID {
	t.nextID++
	return geom.PaneID{Kind: kind, ID: t.nextID}
}

// DisplayName returns Name if it was explicitly set, otherwise the
// title of focused's TerminalPane (an OSC 0/1/2 title the shell or a
// running command reported), or Name unchanged if that's also empty.
func (t *Tab) DisplayName(focused geom.PaneID) string {
	if t.Name != "" {
		return t.Name
	}
	if p, ok := t.panes[focused]; ok {
		if tp, ok := p.(*TerminalPane); ok {
			if title := tp.Title(); title != "" {
				return title
			}
		}
	}
	return t.Name
}

// LastCommandFailed reports whether focused's TerminalPane most recently
// finished a command with a nonzero exit status, per its shell's OSC 133
// D report. A tab bar can use this to badge a tab whose active pane's
// last command failed; false if the pane has no shell-integration
// reports at all, same as a command that exited clean.
func (t *Tab) LastCommandFailed(focused geom.PaneID) bool {
	p, ok := t.panes[focused]
	if !ok {
		return false
	}
	tp, ok := p.(*TerminalPane)
	if !ok {
		return false
	}
	code, ok := tp.LastExitCode()
	return ok && code != 0
}

// Panes returns every pane in this tab, including siblings hidden by a
// fullscreen toggle.
func (t *Tab) Panes() map[geom.PaneID]Pane { return t.panes }

// Pane looks up a single pane.
func (t *Tab) Pane(id geom.PaneID) (Pane, bool) {
	p, ok := t.panes[id]
	return p, ok
}

// Geom returns a pane's current geometry.
func (t *Tab) Geom(id geom.PaneID) geom.PaneGeom { return t.geoms[id] }

// SetGeom overwrites a pane's tracked geometry, used when a resize
// changes a pane's cell dimensions outside of AddPane's own split math.
func (t *Tab) SetGeom(id geom.PaneID, g geom.PaneGeom) { t.geoms[id] = g }

// largestPane returns the id of the pane with the largest cell area,
// used by AddPane when no split direction is given.
func (t *Tab) largestPane() (geom.PaneID, bool) {
	var best geom.PaneID
	bestArea := -1
	found := false
	for id, g := range t.geoms {
		area := g.Rows.AsCells() * g.Cols.AsCells()
		if area > bestArea {
			bestArea = area
			best = id
			found = true
		}
	}
	return best, found
}

// AddPane implements the new-pane placement rule: split the largest
// pane along its longer axis if no direction is given; otherwise split
// the focused pane if it has at least min_split(5×5) cells remaining,
// else fail with ErrNoRoom.
func (t *Tab) AddPane(pane Pane, focused geom.PaneID, direction *geom.SplitDirection) (geom.PaneGeom, error) {
	if len(t.panes) == 0 {
		g := geom.PaneGeom{X: 0, Y: 0, Rows: geom.Fixed(t.Rows), Cols: geom.Fixed(t.Cols)}
		t.panes[pane.ID()] = pane
		t.geoms[pane.ID()] = g
		return g, nil
	}

	target := focused
	var dir geom.SplitDirection
	if direction != nil {
		dir = *direction
		targetGeom := t.geoms[target]
		if dir == geom.SplitHorizontal && targetGeom.Cols.AsCells() < 2*minSplitCols {
			return geom.PaneGeom{}, ErrNoRoom
		}
		if dir == geom.SplitVertical && targetGeom.Rows.AsCells() < 2*minSplitRows {
			return geom.PaneGeom{}, ErrNoRoom
		}
	} else {
		var ok bool
		target, ok = t.largestPane()
		if !ok {
			return geom.PaneGeom{}, fmt.Errorf("screen: no panes to split")
		}
		targetGeom := t.geoms[target]
		if targetGeom.Cols.AsCells() >= targetGeom.Rows.AsCells() {
			dir = geom.SplitHorizontal
		} else {
			dir = geom.SplitVertical
		}
	}

	newGeom := t.splitInPlace(target, dir)
	t.panes[pane.ID()] = pane
	t.geoms[pane.ID()] = newGeom
	return newGeom, nil
}

// splitInPlace halves target's geometry along dir, shrinking target and
// returning the geometry for the new sibling placed after it.
func (t *Tab) splitInPlace(target geom.PaneID, dir geom.SplitDirection) geom.PaneGeom {
	g := t.geoms[target]
	if dir == geom.SplitHorizontal {
		total := g.Cols.AsCells()
		left := total / 2
		right := total - left
		g.Cols = geom.Fixed(left)
		t.geoms[target] = g
		return geom.PaneGeom{X: g.X + left, Y: g.Y, Rows: g.Rows, Cols: geom.Fixed(right)}
	}
	total := g.Rows.AsCells()
	top := total / 2
	bottom := total - top
	g.Rows = geom.Fixed(top)
	t.geoms[target] = g
	return geom.PaneGeom{X: g.X, Y: g.Y + top, Rows: geom.Fixed(bottom), Cols: g.Cols}
}

// ClosePane removes a pane and releases its own resources. Its cell area
// is not handed to any other pane: the remaining panes keep the geometry
// they had.
func (t *Tab) ClosePane(id geom.PaneID) {
	p, ok := t.panes[id]
	if !ok {
		return
	}
	p.Close()
	delete(t.panes, id)
	delete(t.geoms, id)
	if t.fullscreen != nil && *t.fullscreen == id {
		t.fullscreen = nil
	}
	delete(t.suppressedPanes, id)
}

// ToggleFullscreen records every sibling of id's geometry in
// suppressedPanes and expands id to the full tab; the siblings keep
// their entries in the tab's geometry and pane maps meanwhile. Calling
// it again while id is already fullscreen restores the prior geometry.
func (t *Tab) ToggleFullscreen(id geom.PaneID) {
	if t.fullscreen != nil {
		if *t.fullscreen == id {
			for pid, g := range t.suppressedPanes {
				t.geoms[pid] = g
			}
			t.suppressedPanes = make(map[geom.PaneID]geom.PaneGeom)
			t.geoms[id] = t.preFullscreen
			t.fullscreen = nil
		}
		return
	}

	t.preFullscreen = t.geoms[id]
	for pid, g := range t.geoms {
		if pid == id {
			continue
		}
		t.suppressedPanes[pid] = g
	}
	t.geoms[id] = geom.PaneGeom{X: 0, Y: 0, Rows: geom.Fixed(t.Rows), Cols: geom.Fixed(t.Cols)}
	fsID := id
	t.fullscreen = &fsID
}

// IsFullscreen reports whether any pane in the tab is fullscreened.
func (t *Tab) IsFullscreen() bool { return t.fullscreen != nil }
