package ansi

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/trilitech/miaou-matrix/core"
)

// CellWriter receives decoded cells. Out-of-bounds writes must be no-ops,
// which core.Buffer and core.BackView both guarantee.
type CellWriter interface {
	Set(row, col int, c core.Cell)
}

// Parser decodes application-rendered ANSI text into cell writes. The
// running style (SGR attributes plus any open OSC 8 hyperlink) persists
// across Parse calls; escape-sequence state does not, so a sequence
// truncated at the end of one input is abandoned and the remaining bytes
// are treated as literal text on the next call.
type Parser struct {
	style core.Style
}

// NewParser returns a parser with the default running style.
func NewParser() *Parser {
	return &Parser{style: core.DefaultStyle}
}

// Reset restores the running style to default and closes any open
// hyperlink.
func (p *Parser) Reset() {
	p.style = core.DefaultStyle
}

// Style returns the residual running style after the last Parse call.
func (p *Parser) Style() core.Style {
	return p.style
}

// Parse writes the visible content of s into w starting at (row, col).
// Each visible grapheme cluster occupies one cell and advances the column
// by its display width; a newline moves to the next row and resets the
// column to the starting column. Malformed escape sequences never fail:
// the parser drops back to literal text and keeps going.
func (p *Parser) Parse(w CellWriter, row, col int, s string) {
	startCol := col
	i := 0
	n := len(s)

	for i < n {
		b := s[i]

		switch {
		case b == '\x1b':
			consumed := p.parseEscape(s[i:])
			if consumed == 0 {
				// Truncated sequence at end of input. Abandon it.
				return
			}
			i += consumed

		case b == '\n':
			row++
			col = startCol
			i++

		case b < 0x20 || b == 0x7f:
			// Other control bytes contribute nothing visible.
			i++

		default:
			cluster, _, width, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
			if cluster == "" {
				i++
				continue
			}
			if width > 0 {
				w.Set(row, col, core.Cell{Ch: cluster, Style: p.style})
				col += width
			}
			i += len(cluster)
		}
	}
}

// VisibleLength counts the display width of the visible characters of s,
// skipping escape sequences. Used for layout calculations.
func VisibleLength(s string) int {
	p := Parser{style: core.DefaultStyle}
	length := 0
	i := 0
	n := len(s)

	for i < n {
		b := s[i]
		switch {
		case b == '\x1b':
			consumed := p.parseEscape(s[i:])
			if consumed == 0 {
				return length
			}
			i += consumed
		case b == '\n', b < 0x20, b == 0x7f:
			i++
		default:
			cluster, _, width, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
			if cluster == "" {
				i++
				continue
			}
			if width > 0 {
				length += width
			}
			i += len(cluster)
		}
	}
	return length
}

// parseEscape consumes one escape sequence starting at s[0] == ESC and
// applies its effect to the running style. Returns bytes consumed, or 0
// when the sequence is truncated.
func (p *Parser) parseEscape(s string) int {
	if len(s) < 2 {
		return 0
	}
	switch s[1] {
	case '[':
		return p.parseCSI(s)
	case ']':
		return p.parseOSC(s)
	default:
		// Unhandled two-byte escape: consume and ignore.
		return 2
	}
}

// parseCSI consumes ESC [ params terminator. Only SGR ('m') affects the
// style; any other terminator ends the sequence as a no-op.
func (p *Parser) parseCSI(s string) int {
	var params []int
	cur := 0
	hasDigit := false

	i := 2
	for i < len(s) {
		b := s[i]
		switch {
		case b >= '0' && b <= '9':
			cur = cur*10 + int(b-'0')
			hasDigit = true
			i++
		case b == ';':
			params = append(params, cur)
			cur = 0
			hasDigit = false
			i++
		case b >= 0x40 && b <= 0x7e:
			if b == 'm' {
				if hasDigit || len(params) > 0 {
					params = append(params, cur)
				}
				if len(params) == 0 {
					params = []int{0}
				}
				p.applySGR(params)
			}
			return i + 1
		default:
			// Intermediate or garbage byte: tolerate and keep scanning.
			i++
		}
	}
	return 0
}

// parseOSC consumes ESC ] ... terminated by BEL or ESC \. OSC 8 opens or
// closes a hyperlink on the running style; other OSC content is ignored.
func (p *Parser) parseOSC(s string) int {
	i := 2
	for i < len(s) {
		if s[i] == 0x07 {
			p.applyOSC(s[2:i])
			return i + 1
		}
		if s[i] == '\x1b' {
			if i+1 >= len(s) {
				return 0
			}
			if s[i+1] == '\\' {
				p.applyOSC(s[2:i])
				return i + 2
			}
		}
		i++
	}
	return 0
}

// applyOSC handles the OSC payload. Hyperlinks arrive as "8;params;uri";
// an empty uri closes the link.
func (p *Parser) applyOSC(body string) {
	if !strings.HasPrefix(body, "8;") {
		return
	}
	rest := body[2:]
	sep := strings.IndexByte(rest, ';')
	if sep < 0 {
		return
	}
	p.style.URL = rest[sep+1:]
}

// applySGR folds the accumulated parameters into the running style.
// Unrecognized codes are skipped without error.
func (p *Parser) applySGR(params []int) {
	for i := 0; i < len(params); i++ {
		switch param := params[i]; {
		case param == 0:
			url := p.style.URL
			p.style = core.DefaultStyle
			p.style.URL = url
		case param == 1:
			p.style.Bold = true
		case param == 2:
			p.style.Dim = true
		case param == 4:
			p.style.Underline = true
		case param == 7:
			p.style.Reverse = true
		case param == 22:
			p.style.Bold = false
			p.style.Dim = false
		case param == 24:
			p.style.Underline = false
		case param == 27:
			p.style.Reverse = false
		case param >= 30 && param <= 37:
			p.style.Fg = param - 30
		case param == 38:
			if n, used := extended256(params[i:]); used > 0 {
				p.style.Fg = n
				i += used - 1
			}
		case param == 39:
			p.style.Fg = core.ColorDefault
		case param >= 40 && param <= 47:
			p.style.Bg = param - 40
		case param == 48:
			if n, used := extended256(params[i:]); used > 0 {
				p.style.Bg = n
				i += used - 1
			}
		case param == 49:
			p.style.Bg = core.ColorDefault
		case param >= 90 && param <= 97:
			p.style.Fg = param - 90 + 8
		case param >= 100 && param <= 107:
			p.style.Bg = param - 100 + 8
		}
	}
}

// extended256 parses the 38;5;N / 48;5;N form. Returns the palette index
// and how many parameters the form consumed, or 0 when malformed.
func extended256(params []int) (n, used int) {
	if len(params) >= 3 && params[1] == 5 {
		idx := params[2]
		if idx < 0 {
			idx = 0
		}
		if idx > 255 {
			idx = 255
		}
		return idx, 3
	}
	return 0, 0
}
