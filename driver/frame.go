package driver

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/trilitech/miaou-matrix/ansi"
	"github.com/trilitech/miaou-matrix/core"
)

// framer builds the composed screen each tick: header banner, page view,
// modal overlay, footer hints, then parses the whole thing into the back
// buffer and applies selection highlighting.
type framer struct {
	d           *Driver
	parser      *ansi.Parser
	footer      string
	narrowWidth int
}

func newFramer(d *Driver, footer string, narrowWidth int) *framer {
	if narrowWidth <= 0 {
		narrowWidth = defaultNarrowWidth
	}
	return &framer{
		d:           d,
		parser:      ansi.NewParser(),
		footer:      footer,
		narrowWidth: narrowWidth,
	}
}

func (f *framer) compose(rows, cols int) {
	d := f.d

	// One-time narrow-terminal warning, transient and self-dismissing.
	if cols < f.narrowWidth && !d.narrowWarned {
		d.narrowWarned = true
		d.narrowWarnOpen = true
		d.narrowUntil = time.Now().Add(narrowWarnDuration)
	}
	if d.narrowWarnOpen && time.Now().After(d.narrowUntil) {
		d.narrowWarnOpen = false
	}

	header := f.headerLines(cols)
	footer := f.footerLines(cols)

	pageRows := rows - len(header) - len(footer)
	if pageRows < 1 {
		pageRows = 1
	}

	view := d.page.View(pageRows, cols)
	if d.modals != nil {
		if overlay, ok := d.modals.RenderOverlay(view, pageRows, cols); ok {
			view = overlay
		}
	}
	if d.narrowWarnOpen {
		view = overlayWarning(view, pageRows, cols, f.narrowWidth)
	}

	var full strings.Builder
	for _, line := range header {
		full.WriteString(line)
		full.WriteByte('\n')
	}
	full.WriteString(view)
	for _, line := range footer {
		full.WriteByte('\n')
		full.WriteString(line)
	}

	d.buf.WithBackBuffer(func(v *core.BackView) {
		v.Clear()
		f.parser.Reset()
		f.parser.Parse(v, 0, 0, full.String())
		f.highlightSelection(v)
	})
}

// headerLines returns the banner rows reserved above the page.
func (f *framer) headerLines(cols int) []string {
	var lines []string
	if cols < f.narrowWidth {
		lines = append(lines, fitLine("\x1b[7m narrow terminal \x1b[0m", cols))
	}
	if f.d.cfg.DebugOverlay {
		stats := fmt.Sprintf(" fps:%d tick:%d %dx%d diff:%d ",
			f.d.loop.FPS(), f.d.ticks, f.d.rows, f.d.cols, f.d.buf.DiffCellCount())
		lines = append(lines, fitLine("\x1b[2m"+stats+"\x1b[0m", cols))
	}
	return lines
}

// footerLines returns the key-hint rows reserved below the page.
func (f *framer) footerLines(cols int) []string {
	if f.footer == "" {
		return nil
	}
	return []string{fitLine(f.footer, cols)}
}

// highlightSelection toggles reverse video on the selected cells as a
// post-pass over the parsed back grid.
func (f *framer) highlightSelection(v *core.BackView) {
	sel := f.d.sel
	if !sel.Active() {
		return
	}
	for row := 0; row < v.Rows(); row++ {
		for col := 0; col < v.Cols(); col++ {
			if !sel.IsSelected(row, col) {
				continue
			}
			cell := v.Get(row, col)
			cell.Style.Reverse = !cell.Style.Reverse
			v.Set(row, col, cell)
		}
	}
}

// overlayWarning draws a small centered warning box over the view.
func overlayWarning(view string, rows, cols, narrowWidth int) string {
	msg := fmt.Sprintf(" terminal narrower than %d columns ", narrowWidth)
	hint := " resize or press any key "
	boxW := runewidth.StringWidth(msg) + 2
	if w := runewidth.StringWidth(hint) + 2; w > boxW {
		boxW = w
	}
	if boxW > cols {
		boxW = cols
	}
	inner := boxW - 2

	box := []string{
		"┌" + strings.Repeat("─", inner) + "┐",
		"│" + runewidth.FillRight(runewidth.Truncate(msg, inner, ""), inner) + "│",
		"│" + runewidth.FillRight(runewidth.Truncate(hint, inner, ""), inner) + "│",
		"└" + strings.Repeat("─", inner) + "┘",
	}

	lines := strings.Split(view, "\n")
	for len(lines) < rows {
		lines = append(lines, "")
	}
	top := (rows - len(box)) / 2
	if top < 0 {
		top = 0
	}
	left := (cols - boxW) / 2
	if left < 0 {
		left = 0
	}
	for i, boxLine := range box {
		row := top + i
		if row >= len(lines) {
			break
		}
		lines[row] = spliceLine(lines[row], boxLine, left, cols)
	}
	return strings.Join(lines, "\n")
}

// spliceLine overlays repl into line at visible column left. The base
// line is reduced to plain text; styling inside the page under a warning
// box is not worth preserving for a transient overlay.
func spliceLine(line, repl string, left, cols int) string {
	plain := stripForSplice(line)
	plain = runewidth.FillRight(runewidth.Truncate(plain, cols, ""), cols)

	prefix := runewidth.Truncate(plain, left, "")
	replW := runewidth.StringWidth(repl)
	suffixStart := left + replW

	var suffix string
	if suffixStart < cols {
		suffix = truncateLeftCols(plain, suffixStart)
	}
	return prefix + repl + suffix
}

// stripForSplice removes escape sequences so column arithmetic holds.
func stripForSplice(line string) string {
	if !strings.ContainsRune(line, 0x1b) {
		return line
	}
	var out strings.Builder
	i := 0
	for i < len(line) {
		if line[i] != 0x1b {
			out.WriteByte(line[i])
			i++
			continue
		}
		if i+1 < len(line) && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && !(line[j] >= 0x40 && line[j] <= 0x7e) {
				j++
			}
			if j < len(line) {
				j++
			}
			i = j
			continue
		}
		i += 2
	}
	return out.String()
}

// truncateLeftCols drops the first n display columns of s.
func truncateLeftCols(s string, n int) string {
	skipped := 0
	for i, r := range s {
		if skipped >= n {
			return s[i:]
		}
		skipped += runewidth.RuneWidth(r)
	}
	return ""
}

// fitLine truncates or pads a (possibly styled) line to the given width.
// Styled lines are passed through untouched when already short enough.
func fitLine(line string, cols int) string {
	w := ansi.VisibleLength(line)
	switch {
	case w == cols:
		return line
	case w < cols:
		return line + strings.Repeat(" ", cols-w)
	default:
		if strings.ContainsRune(line, 0x1b) {
			// Styled overflow: let the grid clip it.
			return line
		}
		return runewidth.Truncate(line, cols, "")
	}
}
