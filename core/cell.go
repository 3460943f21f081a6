// Package core holds the cell model, the double-buffered grid, and the
// diff engine that computes minimal terminal updates between frames.
package core

// ColorDefault selects the terminal's own default foreground or
// background. All other colors are 256-palette indices (0-255).
const ColorDefault = -1

// Style is the full visual attribute set of one cell: 256-color indices,
// the four supported attributes, and an optional OSC 8 hyperlink target.
type Style struct {
	Fg        int
	Bg        int
	Bold      bool
	Dim       bool
	Underline bool
	Reverse   bool
	URL       string
}

// DefaultStyle is the terminal's reset state.
var DefaultStyle = Style{Fg: ColorDefault, Bg: ColorDefault}

// IsDefault reports whether s is exactly the reset state.
func (s Style) IsDefault() bool {
	return s == DefaultStyle
}

// Cell is one grid position: a grapheme cluster and its style. Ch is a
// string because a cluster may span multiple runes (combining marks,
// emoji sequences).
type Cell struct {
	Ch    string
	Style Style
}

// EmptyCell is a default-styled space, the cleared state of every cell.
var EmptyCell = Cell{Ch: " ", Style: DefaultStyle}

// IsEmpty reports whether the cell renders as cleared space.
func (c Cell) IsEmpty() bool {
	return c == EmptyCell
}
