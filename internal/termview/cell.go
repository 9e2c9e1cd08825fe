package termview

import "github.com/mattn/go-runewidth"

// Cell is one styled character position in the screen grid.
type Cell struct {
	Rune      rune
	Width     int
	FG        Color
	BG        Color
	Bold      bool
	Underline bool
	Inverse   bool
}

func blankCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// cellWidth returns the terminal column width of r, treating wide
// (e.g. CJK) runes as occupying two cells.
func cellWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}
	return w
}
