// Package selection implements mouse-driven text selection over the cell
// grid: single click drags a character range, double click grabs a word,
// triple click grabs the line run between pane borders. Extracted text is
// handed to a clipboard sink when one is registered.
package selection

import (
	"strings"
	"time"

	"github.com/trilitech/miaou-matrix/core"
)

// Grid is the read access the engine needs over the composed screen.
type Grid interface {
	Rows() int
	Cols() int
	Cell(row, col int) core.Cell
}

// Sink receives extracted text, typically a clipboard writer. A nil sink
// makes copying a silent no-op.
type Sink func(text string)

// Multi-click detection thresholds.
const (
	multiClickWindow    = 400 * time.Millisecond
	multiClickProximity = 2 // columns
)

// Point is a grid position.
type Point struct {
	Row int
	Col int
}

// before reports whether p precedes q in row-major order.
func (p Point) before(q Point) bool {
	return p.Row < q.Row || (p.Row == q.Row && p.Col < q.Col)
}

// Mode is the active selection granularity, chosen by click count.
type Mode uint8

const (
	ModeChar Mode = iota + 1
	ModeWord
	ModeLine
)

// Selection tracks an in-progress or completed mouse selection. Not safe
// for concurrent use; the main goroutine owns it.
type Selection struct {
	anchor  *Point
	current *Point
	active  bool
	mode    Mode
	moved   bool

	lastClickTime  time.Time
	lastClickPos   Point
	lastClickCount int

	sink Sink
}

// New returns an empty selection engine.
func New() *Selection {
	return &Selection{}
}

// SetSink registers the clipboard handoff target.
func (s *Selection) SetSink(sink Sink) {
	s.sink = sink
}

// Active reports whether a drag is in progress.
func (s *Selection) Active() bool {
	return s.active
}

// Clear drops any anchor and deactivates the selection.
func (s *Selection) Clear() {
	s.anchor = nil
	s.current = nil
	s.active = false
}

// Start begins a selection at a mouse press. Rapid repeated clicks near
// the same position escalate the mode: one click selects characters from
// a drag, two selects the word under the cursor, three the line run.
func (s *Selection) Start(g Grid, row, col int, now time.Time) {
	pos := Point{Row: row, Col: col}

	if now.Sub(s.lastClickTime) <= multiClickWindow &&
		abs(pos.Row-s.lastClickPos.Row) <= multiClickProximity &&
		abs(pos.Col-s.lastClickPos.Col) <= multiClickProximity {
		s.lastClickCount++
		if s.lastClickCount > 3 {
			s.lastClickCount = 3
		}
	} else {
		s.lastClickCount = 1
	}
	s.lastClickTime = now
	s.lastClickPos = pos
	s.moved = false

	switch s.lastClickCount {
	case 1:
		s.mode = ModeChar
		s.anchor = &Point{Row: row, Col: col}
		s.current = &Point{Row: row, Col: col}
	case 2:
		s.mode = ModeWord
		start, end := expandWhile(g, row, col, isWordChar)
		s.anchor = &Point{Row: row, Col: start}
		s.current = &Point{Row: row, Col: end}
	default:
		s.mode = ModeLine
		start, end := expandWhile(g, row, col, notBoxDrawing)
		s.anchor = &Point{Row: row, Col: start}
		s.current = &Point{Row: row, Col: end}
	}
	s.active = true
}

// Update moves the live end of the selection during a drag. No-op unless
// a drag is active.
func (s *Selection) Update(row, col int) {
	if !s.active || s.current == nil {
		return
	}
	if s.current.Row != row || s.current.Col != col {
		s.moved = true
	}
	s.current.Row = row
	s.current.Col = col
}

// Finish extracts the selected text and deactivates the drag. The anchor
// stays so the highlight remains visible until cleared. A char-mode
// press/release with no drag is a plain click and yields nothing.
func (s *Selection) Finish(g Grid) string {
	if s.anchor == nil || s.current == nil {
		s.active = false
		return ""
	}
	s.active = false
	if s.mode == ModeChar && !s.moved {
		return ""
	}
	return s.extract(g)
}

// IsSelected reports whether (row, col) falls within the current bounds.
// The renderer uses this to apply reverse-video highlighting.
func (s *Selection) IsSelected(row, col int) bool {
	if s.anchor == nil || s.current == nil {
		return false
	}
	start, end := s.Bounds()
	p := Point{Row: row, Col: col}
	if p.before(start) || end.before(p) {
		return false
	}
	return true
}

// Bounds returns the selection endpoints in row-major order.
func (s *Selection) Bounds() (start, end Point) {
	start, end = *s.anchor, *s.current
	if end.before(start) {
		start, end = end, start
	}
	return start, end
}

// CopyToClipboard hands text to the registered sink. Absence of a sink
// is a silent no-op.
func (s *Selection) CopyToClipboard(text string) {
	if s.sink == nil || text == "" {
		return
	}
	s.sink(text)
}

// extract walks the bounds row by row: the first and last rows clip to
// the selection columns, interior rows span the full width. Trailing
// spaces are trimmed per line, lines joined with newlines.
func (s *Selection) extract(g Grid) string {
	start, end := s.Bounds()
	rows, cols := g.Rows(), g.Cols()

	var out []string
	for row := start.Row; row <= end.Row; row++ {
		if row < 0 || row >= rows {
			continue
		}
		from, to := 0, cols-1
		if row == start.Row {
			from = clamp(start.Col, 0, cols-1)
		}
		if row == end.Row {
			to = clamp(end.Col, 0, cols-1)
		}

		var line strings.Builder
		for col := from; col <= to; col++ {
			line.WriteString(g.Cell(row, col).Ch)
		}
		out = append(out, strings.TrimRight(line.String(), " "))
	}
	return strings.Join(out, "\n")
}

// expandWhile grows [start, end] from col while pred holds on each side.
func expandWhile(g Grid, row, col int, pred func(string) bool) (start, end int) {
	cols := g.Cols()
	col = clamp(col, 0, cols-1)
	start, end = col, col
	if !pred(g.Cell(row, col).Ch) {
		return start, end
	}
	for start > 0 && pred(g.Cell(row, start-1).Ch) {
		start--
	}
	for end < cols-1 && pred(g.Cell(row, end+1).Ch) {
		end++
	}
	return start, end
}

// isWordChar treats alphanumerics, underscore, dash, and any multi-byte
// glyph that is not a box-drawing border as part of a word.
func isWordChar(ch string) bool {
	if ch == "" {
		return false
	}
	r := []rune(ch)[0]
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	case r >= 0x80:
		return !boxDrawingRune(r)
	}
	return false
}

// notBoxDrawing stops line selection at table and pane borders.
func notBoxDrawing(ch string) bool {
	if ch == "" {
		return true
	}
	return !boxDrawingRune([]rune(ch)[0])
}

// boxDrawingRune covers the Unicode box-drawing and block-element ranges.
func boxDrawingRune(r rune) bool {
	return r >= 0x2500 && r <= 0x259f
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
