package selection

import (
	"testing"
	"time"

	"github.com/trilitech/miaou-matrix/core"
)

// fakeGrid builds a Grid from string rows, padded with spaces.
type fakeGrid struct {
	lines []string
	cols  int
}

func newFakeGrid(cols int, lines ...string) *fakeGrid {
	return &fakeGrid{lines: lines, cols: cols}
}

func (g *fakeGrid) Rows() int { return len(g.lines) }
func (g *fakeGrid) Cols() int { return g.cols }

func (g *fakeGrid) Cell(row, col int) core.Cell {
	if row < 0 || row >= len(g.lines) || col < 0 || col >= g.cols {
		return core.EmptyCell
	}
	runes := []rune(g.lines[row])
	if col >= len(runes) {
		return core.EmptyCell
	}
	return core.Cell{Ch: string(runes[col]), Style: core.DefaultStyle}
}

var t0 = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestCharSelectionDrag(t *testing.T) {
	g := newFakeGrid(20, "hello world")
	s := New()

	s.Start(g, 0, 0, t0)
	if !s.Active() {
		t.Fatal("Selection should be active after Start")
	}
	s.Update(0, 4)
	text := s.Finish(g)

	if text != "hello" {
		t.Errorf("Expected %q, got %q", "hello", text)
	}
	if s.Active() {
		t.Error("Selection should deactivate after Finish")
	}
}

func TestCharSelectionReversedDrag(t *testing.T) {
	g := newFakeGrid(20, "hello world")
	s := New()

	// Dragging right-to-left normalizes the bounds.
	s.Start(g, 0, 10, t0)
	s.Update(0, 6)
	if text := s.Finish(g); text != "world" {
		t.Errorf("Expected %q, got %q", "world", text)
	}
}

func TestMultiRowExtraction(t *testing.T) {
	g := newFakeGrid(10, "abcdef", "ghijkl", "mnopqr")
	s := New()

	s.Start(g, 0, 3, t0)
	s.Update(2, 2)
	text := s.Finish(g)

	// First row clips from the anchor column, interior rows span fully,
	// last row clips to the drop column. Trailing pad spaces trim away.
	want := "def\nghijkl\nmno"
	if text != want {
		t.Errorf("Expected %q, got %q", want, text)
	}
}

func TestDoubleClickSelectsWord(t *testing.T) {
	g := newFakeGrid(30, "foo bar_baz-qux quux")
	s := New()

	s.Start(g, 0, 8, t0)
	s.Finish(g)
	s.Start(g, 0, 8, t0.Add(100*time.Millisecond))
	text := s.Finish(g)

	// Underscore and dash count as word characters.
	if text != "bar_baz-qux" {
		t.Errorf("Expected %q, got %q", "bar_baz-qux", text)
	}
}

func TestTripleClickSelectsLineRun(t *testing.T) {
	g := newFakeGrid(20, "│some text│")
	s := New()

	s.Start(g, 0, 5, t0)
	s.Finish(g)
	s.Start(g, 0, 5, t0.Add(100*time.Millisecond))
	s.Finish(g)
	s.Start(g, 0, 5, t0.Add(200*time.Millisecond))
	text := s.Finish(g)

	// Line selection stops at the box-drawing borders on either side.
	if text != "some text" {
		t.Errorf("Expected %q, got %q", "some text", text)
	}
}

func TestClickCountCapsAtThree(t *testing.T) {
	g := newFakeGrid(20, "│some text│")
	s := New()

	for i := 0; i < 4; i++ {
		s.Start(g, 0, 5, t0.Add(time.Duration(i)*100*time.Millisecond))
		s.Finish(g)
	}
	s.Start(g, 0, 5, t0.Add(400*time.Millisecond))
	if text := s.Finish(g); text != "some text" {
		t.Errorf("Fifth rapid click should stay in line mode, got %q", text)
	}
}

func TestSlowSecondClickStaysCharMode(t *testing.T) {
	g := newFakeGrid(20, "hello world")
	s := New()

	s.Start(g, 0, 2, t0)
	s.Finish(g)
	// Outside the 400ms window: back to a fresh single click.
	s.Start(g, 0, 2, t0.Add(time.Second))
	s.Update(0, 3)
	if text := s.Finish(g); text != "ll" {
		t.Errorf("Expected character-mode drag selection, got %q", text)
	}
}

func TestDistantSecondClickStaysCharMode(t *testing.T) {
	g := newFakeGrid(20, "hello world")
	s := New()

	s.Start(g, 0, 2, t0)
	s.Finish(g)
	// Fast but far away: proximity check resets the count.
	s.Start(g, 0, 8, t0.Add(100*time.Millisecond))
	s.Update(0, 9)
	if text := s.Finish(g); text != "rl" {
		t.Errorf("Expected character-mode drag selection, got %q", text)
	}
}

func TestPlainClickYieldsNothing(t *testing.T) {
	g := newFakeGrid(20, "hello world")
	s := New()

	// Press and release with no drag: a click, not a copy.
	s.Start(g, 0, 2, t0)
	if text := s.Finish(g); text != "" {
		t.Errorf("Plain click should extract nothing, got %q", text)
	}

	// A drag back to the press cell still counts as movement.
	s.Start(g, 0, 2, t0.Add(time.Second))
	s.Update(0, 3)
	s.Update(0, 2)
	if text := s.Finish(g); text != "l" {
		t.Errorf("Expected dragged single cell, got %q", text)
	}
}

func TestDoubleClickWithoutDragStillCopies(t *testing.T) {
	g := newFakeGrid(20, "hello world")
	s := New()

	s.Start(g, 0, 1, t0)
	s.Finish(g)
	s.Start(g, 0, 1, t0.Add(100*time.Millisecond))
	if text := s.Finish(g); text != "hello" {
		t.Errorf("Word mode should copy without a drag, got %q", text)
	}
}

func TestDoubleClickOnNonWordChar(t *testing.T) {
	g := newFakeGrid(20, "foo  bar")
	s := New()

	s.Start(g, 0, 3, t0)
	s.Finish(g)
	s.Start(g, 0, 3, t0.Add(100*time.Millisecond))
	// Word expansion from a space collapses to that single cell, and the
	// trailing-space trim leaves nothing.
	if text := s.Finish(g); text != "" {
		t.Errorf("Expected empty extraction on whitespace, got %q", text)
	}
}

func TestIsSelected(t *testing.T) {
	g := newFakeGrid(10, "abcdef", "ghijkl")
	s := New()

	s.Start(g, 0, 2, t0)
	s.Update(1, 3)

	cases := []struct {
		row, col int
		want     bool
	}{
		{0, 1, false},
		{0, 2, true},
		{0, 9, true}, // rest of the anchor row
		{1, 0, true},
		{1, 3, true},
		{1, 4, false},
	}
	for _, tc := range cases {
		if got := s.IsSelected(tc.row, tc.col); got != tc.want {
			t.Errorf("IsSelected(%d,%d) = %v, want %v", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestClear(t *testing.T) {
	g := newFakeGrid(10, "abc")
	s := New()

	s.Start(g, 0, 0, t0)
	s.Update(0, 2)
	s.Clear()

	if s.Active() {
		t.Error("Clear should deactivate")
	}
	if s.IsSelected(0, 1) {
		t.Error("Clear should drop the highlight")
	}
}

func TestFinishWithoutStart(t *testing.T) {
	g := newFakeGrid(10, "abc")
	s := New()
	if text := s.Finish(g); text != "" {
		t.Errorf("Expected empty text, got %q", text)
	}
}

func TestCopyToClipboard(t *testing.T) {
	s := New()

	// No sink registered: silent no-op.
	s.CopyToClipboard("text")

	var got string
	s.SetSink(func(text string) { got = text })
	s.CopyToClipboard("")
	if got != "" {
		t.Error("Empty text should not reach the sink")
	}
	s.CopyToClipboard("copied")
	if got != "copied" {
		t.Errorf("Expected sink to receive %q, got %q", "copied", got)
	}
}

func TestOutOfBoundsDragClamped(t *testing.T) {
	g := newFakeGrid(5, "abcde")
	s := New()

	s.Start(g, 0, 2, t0)
	s.Update(3, 99)
	// Rows past the grid contribute nothing; columns clamp to the width.
	if text := s.Finish(g); text != "cde" {
		t.Errorf("Expected %q, got %q", "cde", text)
	}
}
