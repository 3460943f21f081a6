// Demo entrypoint: a falling-glyph rain page that exercises the full
// engine stack end to end. Run it in a terminal; q, Escape, or Ctrl+C
// exits. MATRIX_FPS, MATRIX_TPS, and MATRIX_DEBUG tune the loops.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/trilitech/miaou-matrix/config"
	"github.com/trilitech/miaou-matrix/driver"
	"github.com/trilitech/miaou-matrix/terminal"
)

const (
	trailLength = 8
	glyphSet    = "0123456789ABCDEF*+:=."
)

// trail palette, bright head fading into dark green.
var trailColors = [trailLength]int{231, 120, 84, 46, 40, 34, 28, 22}

type drop struct {
	row   int
	speed int // ticks per step
	phase int
	runes []rune
}

// rainPage animates one drop per column. Each View call advances the
// simulation one tick, so animation speed follows the driver's TPS.
type rainPage struct {
	rows, cols int
	drops      []drop
	quit       bool
}

func newRainPage() *rainPage {
	return &rainPage{}
}

func (p *rainPage) resize(rows, cols int) {
	p.rows, p.cols = rows, cols
	p.drops = make([]drop, cols)
	for col := range p.drops {
		p.drops[col] = newDrop(rows)
	}
}

func newDrop(rows int) drop {
	runes := make([]rune, trailLength)
	for i := range runes {
		runes[i] = randomGlyph()
	}
	return drop{
		row:   -rand.Intn(rows + trailLength),
		speed: 1 + rand.Intn(3),
		runes: runes,
	}
}

func randomGlyph() rune {
	glyphs := []rune(glyphSet)
	return glyphs[rand.Intn(len(glyphs))]
}

func (p *rainPage) step() {
	for col := range p.drops {
		d := &p.drops[col]
		d.phase++
		if d.phase < d.speed {
			continue
		}
		d.phase = 0
		d.row++
		d.runes[rand.Intn(trailLength)] = randomGlyph()
		if d.row-trailLength > p.rows {
			p.drops[col] = newDrop(p.rows)
		}
	}
}

func (p *rainPage) View(rows, cols int) string {
	if rows != p.rows || cols != p.cols {
		p.resize(rows, cols)
	}
	p.step()

	grid := make([][]rune, rows)
	colors := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]rune, cols)
		colors[r] = make([]int, cols)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	for col, d := range p.drops {
		if col >= cols {
			break
		}
		for i := 0; i < trailLength; i++ {
			row := d.row - i
			if row < 0 || row >= rows {
				continue
			}
			grid[row][col] = d.runes[i]
			colors[row][col] = trailColors[i]
		}
	}

	var out strings.Builder
	for r := 0; r < rows; r++ {
		last := -1
		for c := 0; c < cols; c++ {
			if grid[r][c] == ' ' {
				out.WriteByte(' ')
				continue
			}
			if colors[r][c] != last {
				last = colors[r][c]
				fmt.Fprintf(&out, "\x1b[38;5;%dm", last)
			}
			out.WriteRune(grid[r][c])
		}
		out.WriteString("\x1b[0m")
		if r < rows-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func (p *rainPage) HandleKey(ev terminal.Event) bool {
	switch ev.Key {
	case "q", terminal.KeyEscape:
		p.quit = true
		return true
	}
	return false
}

func (p *rainPage) Refresh() {}

// quitNav reports quit-when-asked navigation out of the page.
type quitNav struct {
	page *rainPage
}

func (n quitNav) Pending() driver.Nav {
	if n.page.quit {
		return driver.Nav{Kind: driver.NavQuit}
	}
	return driver.Nav{}
}

func main() {
	cfg := config.Load()
	page := newRainPage()

	d, err := driver.New(cfg, driver.Options{
		Page:   page,
		Nav:    quitNav{page: page},
		Footer: "\x1b[2m q quit · drag to select · double-click word \x1b[0m",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "miaou-matrix: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			panic(r)
		}
	}()

	d.Run()
}
