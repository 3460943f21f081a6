package core

// ChangeKind tags the operation a Change carries.
type ChangeKind uint8

const (
	ChangeMoveTo ChangeKind = iota
	ChangeSetStyle
	ChangeWriteChar
	ChangeWriteRun
)

// Change is one entry of a diff's ordered change list. The semantics of
// applying a list in order: MoveTo positions the cursor, SetStyle selects
// attributes for subsequent writes, WriteChar and WriteRun emit glyphs
// advancing the cursor. Only the fields relevant to Kind are set.
type Change struct {
	Kind  ChangeKind
	Row   int
	Col   int
	Style Style
	Ch    string
	Count int
}

// MoveTo positions the cursor at a 0-indexed grid coordinate.
func MoveTo(row, col int) Change {
	return Change{Kind: ChangeMoveTo, Row: row, Col: col}
}

// SetStyle selects the style for subsequent writes.
func SetStyle(s Style) Change {
	return Change{Kind: ChangeSetStyle, Style: s}
}

// WriteChar emits one glyph at the cursor.
func WriteChar(ch string) Change {
	return Change{Kind: ChangeWriteChar, Ch: ch}
}

// WriteRun emits count repetitions of the same glyph.
func WriteRun(ch string, count int) Change {
	return Change{Kind: ChangeWriteRun, Ch: ch, Count: count}
}
