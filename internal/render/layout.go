// Package render draws board snapshots and maps screen positions to points.
// It only reads goban.Snapshot values and never touches a live board.
package render

import (
	"math"

	"goban/internal/domain/goban"
)

// Layout places the intersections of a Size x Size board on a pixel grid.
// Left and Top are the pixel centre of point (0,0).
type Layout struct {
	Size int
	Left float64
	Top  float64
	Cell float64
}

// DefaultLayout is the screen geometry of the desktop board: 40px cells with
// the first line at (45,145).
func DefaultLayout(size int) Layout {
	return Layout{Size: size, Left: 45, Top: 145, Cell: 40}
}

// Pixel returns the centre of p.
func (l Layout) Pixel(p goban.Point) (x, y float64) {
	return l.Left + float64(p.X)*l.Cell, l.Top + float64(p.Y)*l.Cell
}

// Outline is the clickable box: the outer lines grown by half a cell.
func (l Layout) Outline() (x0, y0, x1, y1 float64) {
	half := l.Cell / 2
	span := float64(l.Size-1) * l.Cell
	return l.Left - half, l.Top - half, l.Left + span + half, l.Top + span + half
}

// Point maps a pixel to the nearest intersection. ok is false outside the
// outline.
func (l Layout) Point(x, y float64) (p goban.Point, ok bool) {
	x0, y0, x1, y1 := l.Outline()
	if x < x0 || x >= x1 || y < y0 || y >= y1 {
		return goban.Point{}, false
	}
	return goban.Pt(nearest((x-l.Left)/l.Cell), nearest((y-l.Top)/l.Cell)), true
}

// nearest rounds half up, so the left and top edges of the outline map to 0.
func nearest(v float64) int {
	return int(math.Floor(v + 0.5))
}
