package render

import (
	"strings"

	"goban/internal/domain/goban"
)

// Hoshi returns the star points marked on standard boards, or nil.
func Hoshi(size int) []goban.Point {
	var lines []int
	switch size {
	case 19:
		lines = []int{3, 9, 15}
	case 13:
		lines = []int{3, 6, 9}
	case 9:
		lines = []int{2, 4, 6}
	default:
		return nil
	}
	points := make([]goban.Point, 0, len(lines)*len(lines))
	for _, y := range lines {
		for _, x := range lines {
			points = append(points, goban.Pt(x, y))
		}
	}
	return points
}

// Label names a column or row by letter, starting from a.
func Label(i int) string {
	return string(rune('a' + i))
}

// Text draws snap with X for black, O for white, + for empty star points
// and . for other empty points. Columns and rows are labelled a, b, c...
func Text(snap goban.Snapshot) string {
	grid := snap.Grid()
	stars := make(map[goban.Point]bool)
	for _, p := range Hoshi(snap.Size) {
		stars[p] = true
	}

	var b strings.Builder
	b.WriteString("  ")
	for x := 0; x < snap.Size; x++ {
		b.WriteString(Label(x) + " ")
	}
	b.WriteString("\n")
	for y, row := range grid {
		b.WriteString(Label(y) + " ")
		for x, c := range row {
			switch {
			case c == goban.Black:
				b.WriteString("X ")
			case c == goban.White:
				b.WriteString("O ")
			case stars[goban.Pt(x, y)]:
				b.WriteString("+ ")
			default:
				b.WriteString(". ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
