package grid

// logicalLine is a hard-wrap-delimited run of cells spanning one or more
// physical rows joined by the wrapped flag.
type logicalLine struct {
	cells []Cell
	// cursorOffset is the logical cell offset of the cursor within this
	// line, or -1 if the cursor is not on this line.
	cursorOffset int
}

// collectLogicalLines groups the buffer's physical rows into logical lines,
// rejoining soft-wrapped continuations. cursorRow/cursorCol locate the
// cursor so its logical offset can be tracked across the reflow.
func collectLogicalLines(b *Buffer, cursorRow, cursorCol int) []logicalLine {
	var lines []logicalLine
	var cur *logicalLine

	for row := 0; row < b.Rows(); row++ {
		if cur == nil || !b.IsWrapped(row) {
			lines = append(lines, logicalLine{cursorOffset: -1})
			cur = &lines[len(lines)-1]
		}
		rowCells := b.cells[row]
		base := len(cur.cells)
		cur.cells = append(cur.cells, rowCells...)
		if row == cursorRow {
			off := cursorCol
			if off > len(rowCells) {
				off = len(rowCells)
			}
			cur.cursorOffset = base + off
		}
	}

	// Trim trailing blank cells from each logical line so re-splitting
	// doesn't pad every line out to a multiple of the old width.
	for i := range lines {
		lines[i].cells = trimTrailingBlank(lines[i].cells)
	}
	return lines
}

func trimTrailingBlank(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 {
		c := cells[end-1]
		if c.Char != ' ' && c.Char != 0 {
			break
		}
		end--
	}
	return cells[:end]
}

// splitLogicalLine re-splits a logical line's cells into rows of at most
// newCols cells, never separating a wide character from its spacer.
func splitLogicalLine(cells []Cell, newCols int) (rows [][]Cell, wrapped []bool) {
	if newCols <= 0 {
		newCols = 1
	}
	if len(cells) == 0 {
		rows = append(rows, nil)
		wrapped = append(wrapped, false)
		return
	}
	i := 0
	for i < len(cells) {
		end := i + newCols
		if end > len(cells) {
			end = len(cells)
		} else if end < len(cells) && cells[end-1].IsWide() {
			// don't leave a lone wide-char left cell at the boundary
			end--
		}
		if end <= i {
			end = i + 1
		}
		rows = append(rows, cells[i:end])
		wrapped = append(wrapped, end < len(cells))
		i = end
	}
	return
}

// reflow rebuilds the buffer at newCols (keeping the same row count),
// preserving hard-wrap boundaries and re-splitting soft-wrapped lines.
// Returns the cursor's new (row, col), clamped to the new bounds.
func (b *Buffer) reflow(newCols int, cursorRow, cursorCol int) (int, int) {
	if newCols == b.cols {
		return cursorRow, cursorCol
	}

	lines := collectLogicalLines(b, cursorRow, cursorCol)

	type physRow struct {
		cells   []Cell
		wrapped bool
	}
	var physRows []physRow
	newCursorRow, newCursorCol := 0, 0
	cursorFound := false

	for _, line := range lines {
		splitRows, wrapFlags := splitLogicalLine(line.cells, newCols)
		for idx, rc := range splitRows {
			physRows = append(physRows, physRow{cells: rc, wrapped: wrapFlags[idx]})
		}
		if line.cursorOffset >= 0 {
			// Locate which produced row holds cursorOffset by walking
			// the same split again with cumulative lengths.
			consumed := 0
			base := len(physRows) - len(splitRows)
			for idx, rc := range splitRows {
				if line.cursorOffset <= consumed+len(rc) {
					newCursorRow = base + idx
					newCursorCol = line.cursorOffset - consumed
					cursorFound = true
					break
				}
				consumed += len(rc)
			}
			if !cursorFound {
				newCursorRow = base + len(splitRows) - 1
				if len(splitRows) > 0 {
					newCursorCol = len(splitRows[len(splitRows)-1])
				}
				cursorFound = true
			}
		}
	}

	rows := b.rows
	newCells := make([][]Cell, rows)
	newWrapped := make([]bool, rows)
	for i := 0; i < rows; i++ {
		newCells[i] = make([]Cell, newCols)
		for j := range newCells[i] {
			newCells[i][j] = NewCell()
		}
	}

	// Keep the bottom `rows` produced physical rows (content scrolls off
	// the top like a real terminal would as it reflows); anything above
	// that is left for lazy scrollback reflow per the grid's resize
	// contract.
	start := 0
	if len(physRows) > rows {
		start = len(physRows) - rows
	}
	for i := start; i < len(physRows); i++ {
		dst := i - start
		if dst >= rows {
			break
		}
		copy(newCells[dst], physRows[i].cells)
		for j := range newCells[dst] {
			newCells[dst][j].MarkDirty()
		}
		newWrapped[dst] = physRows[i].wrapped
	}

	b.cells = newCells
	b.wrapped = newWrapped
	b.cols = newCols
	b.hasDirty = true

	newTabStop := make([]bool, newCols)
	for i := 0; i < newCols; i += 8 {
		newTabStop[i] = true
	}
	b.tabStop = newTabStop

	newCursorRow -= start
	if newCursorRow < 0 {
		newCursorRow = 0
	}
	if newCursorRow >= rows {
		newCursorRow = rows - 1
	}
	if newCursorCol >= newCols {
		newCursorCol = newCols - 1
	}
	if newCursorCol < 0 {
		newCursorCol = 0
	}
	return newCursorRow, newCursorCol
}
