package goban

import (
	"fmt"
	"strings"
)

// Point is an intersection on the board, zero based.
type Point struct {
	X int `json:"x" bson:"x" yaml:"x"`
	Y int `json:"y" bson:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Adjacent reports whether q is an orthogonal neighbour of p.
func (p Point) Adjacent(q Point) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx+dy == 1
}

// In reports whether p lies on a size x size board.
func (p Point) In(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// neighbours appends the on-board orthogonal neighbours of p to dst.
func (p Point) neighbours(size int, dst []Point) []Point {
	if p.X > 0 {
		dst = append(dst, Point{p.X - 1, p.Y})
	}
	if p.X+1 < size {
		dst = append(dst, Point{p.X + 1, p.Y})
	}
	if p.Y > 0 {
		dst = append(dst, Point{p.X, p.Y - 1})
	}
	if p.Y+1 < size {
		dst = append(dst, Point{p.X, p.Y + 1})
	}
	return dst
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// less orders points row by row.
func (p Point) less(q Point) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// Color of a stone. There is no empty colour: an empty point has no stone.
type Color int8

const (
	Black Color = iota + 1
	White
)

// Opponent returns the other colour.
func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

// Valid reports whether c is Black or White.
func (c Color) Valid() bool {
	return c == Black || c == White
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "none"
}

// ParseColor accepts "black"/"white" and the single letters b/w, any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b":
		return Black, nil
	case "white", "w":
		return White, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrColor, s)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrColor, c)
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
