package goban

import "slices"

// Group is a maximal connected set of same-colour stones and its liberties.
type Group struct {
	color     Color
	stones    map[*Stone]struct{}
	liberties map[Point]struct{}
	merged    bool
}

func newGroup(s *Stone) *Group {
	g := &Group{
		color:     s.color,
		stones:    make(map[*Stone]struct{}, 1),
		liberties: make(map[Point]struct{}, 4),
	}
	g.add(s)
	return g
}

func (g *Group) add(s *Stone) {
	g.stones[s] = struct{}{}
	s.group = g
}

func (g *Group) drop(s *Stone) {
	delete(g.stones, s)
}

// merge moves every stone of other into g. other is left empty and must be
// forgotten by the caller.
func (g *Group) merge(other *Group) error {
	if other == g {
		return nil
	}
	if other.color != g.color || other.merged {
		return ErrInvalidMerge
	}
	for s := range other.stones {
		g.add(s)
	}
	for p := range other.liberties {
		g.liberties[p] = struct{}{}
	}
	other.stones = nil
	other.liberties = nil
	other.merged = true
	return nil
}

// recomputeLiberties rebuilds the liberty set from the current occupancy.
func (g *Group) recomputeLiberties(b *Board) {
	clear(g.liberties)
	var buf [4]Point
	for s := range g.stones {
		for _, n := range s.point.neighbours(b.size, buf[:0]) {
			if _, occupied := b.grid[n]; !occupied {
				g.liberties[n] = struct{}{}
			}
		}
	}
}

// Captured reports whether the group has run out of liberties.
func (g *Group) Captured() bool {
	return len(g.liberties) == 0
}

func (g *Group) Color() Color {
	return g.color
}

// Len is the number of stones in the group.
func (g *Group) Len() int {
	return len(g.stones)
}

func (g *Group) LibertyCount() int {
	return len(g.liberties)
}

// Stones returns the member points in row-major order.
func (g *Group) Stones() []Point {
	points := make([]Point, 0, len(g.stones))
	for s := range g.stones {
		points = append(points, s.point)
	}
	sortPoints(points)
	return points
}

// Liberties returns the liberty points in row-major order.
func (g *Group) Liberties() []Point {
	points := make([]Point, 0, len(g.liberties))
	for p := range g.liberties {
		points = append(points, p)
	}
	sortPoints(points)
	return points
}

// origin is the smallest member point, used for stable ordering.
func (g *Group) origin() Point {
	first := true
	var lowest Point
	for s := range g.stones {
		if first || s.point.less(lowest) {
			lowest = s.point
			first = false
		}
	}
	return lowest
}

func sortPoints(points []Point) {
	slices.SortFunc(points, ComparePoints)
}
