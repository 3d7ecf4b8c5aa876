package goban

// Stone is a placed piece. Only Board creates and removes stones; callers
// get read access for as long as the stone stays on the board.
type Stone struct {
	point Point
	color Color
	group *Group
}

func (s *Stone) Point() Point {
	return s.point
}

func (s *Stone) Color() Color {
	return s.color
}

// Group returns the group the stone currently belongs to, nil once removed.
func (s *Stone) Group() *Group {
	return s.group
}

// remove takes the stone off the board and out of its group, discarding the
// group once it is empty.
func (s *Stone) remove(b *Board) {
	delete(b.grid, s.point)
	g := s.group
	s.group = nil
	if g == nil {
		return
	}
	g.drop(s)
	if g.Len() == 0 {
		delete(b.groups, g)
	}
}
