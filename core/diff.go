package core

import (
	"github.com/mattn/go-runewidth"
)

// Diff compares the front and back grids and returns the minimal ordered
// change list that transforms the terminal from front state to back state.
// Takes the buffer lock for the whole scan.
func (b *Buffer) Diff() []Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.diffRegion(0, 0, b.rows-1, b.cols-1)
}

// DiffUnlocked is Diff for callers already holding the lock (the render
// goroutine, which diffs and swaps as one atomic step).
func (b *Buffer) DiffUnlocked() []Change {
	return b.diffRegion(0, 0, b.rows-1, b.cols-1)
}

// DiffRegion bounds the scan to the sub-rectangle [r0,r1]x[c0,c1],
// inclusive, clamped to the grid. Used for partial-redraw optimizations.
func (b *Buffer) DiffRegion(r0, c0, r1, c1 int) []Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.diffRegion(r0, c0, r1, c1)
}

// DiffCellCount returns the number of differing cells, for diagnostics.
func (b *Buffer) DiffCellCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for i := range b.back {
		if b.back[i] != b.front[i] {
			count++
		}
	}
	return count
}

// diffRegion is the row-major scan. A virtual cursor and virtual style
// track what the encoder will have emitted so far; the encoder resets to
// an unknown cursor and default style at the start of each render, so the
// cursor starts invalid and the style starts default. The cursor advances
// by display width, keeping it aligned with the real terminal across
// wide glyphs.
func (b *Buffer) diffRegion(r0, c0, r1, c1 int) []Change {
	if r0 < 0 {
		r0 = 0
	}
	if c0 < 0 {
		c0 = 0
	}
	if r1 >= b.rows {
		r1 = b.rows - 1
	}
	if c1 >= b.cols {
		c1 = b.cols - 1
	}
	if r0 > r1 || c0 > c1 {
		return nil
	}

	var changes []Change
	curStyle := DefaultStyle
	curRow, curCol := 0, 0
	cursorValid := false

	for row := r0; row <= r1; row++ {
		base := row * b.cols
		col := c0
		for col <= c1 {
			idx := base + col
			cell := b.back[idx]
			w := cellWidth(cell.Ch)
			if cell == b.front[idx] {
				col += w
				continue
			}

			if !cursorValid || curRow != row || curCol != col {
				changes = append(changes, MoveTo(row, col))
				curRow, curCol = row, col
				cursorValid = true
			}
			if cell.Style != curStyle {
				changes = append(changes, SetStyle(cell.Style))
				curStyle = cell.Style
			}

			if w > 1 {
				// A wide glyph advances the terminal cursor by its full
				// width and covers the continuation cell, which stays
				// unwritten.
				changes = append(changes, WriteChar(cell.Ch))
				curCol += w
				col += w
				continue
			}

			// Run of identical single-width cells at consecutive
			// columns. Uniform regions (borders, padding, blanks) are
			// the common case.
			run := 1
			for col+run <= c1 {
				nidx := base + col + run
				if b.back[nidx] != cell || b.back[nidx] == b.front[nidx] {
					break
				}
				run++
			}
			if run >= 2 {
				changes = append(changes, WriteRun(cell.Ch, run))
			} else {
				changes = append(changes, WriteChar(cell.Ch))
			}
			curCol += run
			col += run
		}
	}
	return changes
}

// cellWidth is the number of terminal columns a written cell advances
// the cursor by. The dirty sentinel and control-only content count as 1.
func cellWidth(ch string) int {
	if w := runewidth.StringWidth(ch); w > 1 {
		return w
	}
	return 1
}
