package geom

// Stack models one column of stacked panes: all but one member ("the
// flexible pane") show only their header line (Fixed(1) rows); the
// flexible member gets the remaining space as a Percent row.
//
// Grounded on stacked_panes.rs's fixed-header / flexible-pane invariant:
// exactly one stack member has a percent row dimension at any time.
type Stack struct {
	// Members is ordered top to bottom as the headers stack on screen.
	Members []PaneID
	// Flexible is the member currently showing full content.
	Flexible PaneID
}

// MinHeight returns the minimum row count this stack needs: one header
// line per non-flexible member plus the flexible pane's own floor.
func (s Stack) MinHeight(flexibleMinRows int) int {
	headers := 0
	for _, m := range s.Members {
		if m != s.Flexible {
			headers++
		}
	}
	return headers + flexibleMinRows
}

// SwapFocus makes target the stack's flexible pane: the current flexible
// pane shrinks to a Fixed(1) header and target expands to take the
// remaining percent space. Returns the new PaneGeom for every affected
// member, keyed by pane id; callers apply these directly (no separate
// resizer pass is needed since the stack's total height is unchanged).
func (s *Stack) SwapFocus(target PaneID, geoms map[PaneID]PaneGeom) map[PaneID]PaneGeom {
	if target == s.Flexible {
		return nil
	}
	found := false
	for _, m := range s.Members {
		if m == target {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	out := make(map[PaneID]PaneGeom, 2)

	oldFlexGeom := geoms[s.Flexible]
	oldFlexGeom.Rows = Fixed(1)
	out[s.Flexible] = oldFlexGeom

	// The target reclaims the rows the old flexible pane gave up, plus
	// whatever row budget it already had as a header.
	targetGeom := geoms[target]
	released := geoms[s.Flexible].Rows.AsCells() - 1
	targetGeom.Rows = geoms[s.Flexible].Rows.WithInner(targetGeom.Rows.AsCells() + released)
	out[target] = targetGeom

	s.Flexible = target
	return out
}

// CloseMember removes pane from the stack, transferring its rows to the
// flexible pane (or, if pane was itself the flexible member, to the
// sibling immediately above it, falling back to the one below for the top
// member). Returns the stack's remaining members and the row delta to
// apply to whichever pane absorbed the closed one's space.
func (s *Stack) CloseMember(pane PaneID, rows map[PaneID]int) (remaining []PaneID, absorber PaneID, absorbedRows int) {
	idx := -1
	for i, m := range s.Members {
		if m == pane {
			idx = i
			break
		}
	}
	if idx == -1 {
		return s.Members, PaneID{}, 0
	}

	freed := rows[pane]
	remaining = append(append([]PaneID(nil), s.Members[:idx]...), s.Members[idx+1:]...)

	if pane != s.Flexible {
		absorber = s.Flexible
	} else if idx > 0 {
		absorber = s.Members[idx-1]
	} else if len(remaining) > 0 {
		absorber = remaining[0]
	}

	if pane == s.Flexible && absorber != (PaneID{}) {
		s.Flexible = absorber
	}

	s.Members = remaining
	return remaining, absorber, freed
}
