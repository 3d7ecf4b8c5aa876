package goban

// StoneView is a copy of a stone's position and colour.
type StoneView struct {
	Point Point `json:"point" bson:"point"`
	Color Color `json:"color" bson:"color"`
}

// GroupView is a copy of a group's members and liberties.
type GroupView struct {
	Color     Color   `json:"color"`
	Stones    []Point `json:"stones"`
	Liberties []Point `json:"liberties"`
}

// Snapshot is a detached copy of the board state. It stays valid after the
// board moves on, so presentation code can keep it for as long as it likes.
type Snapshot struct {
	Size       int           `json:"size"`
	Rules      Rules         `json:"rules"`
	ToPlay     Color         `json:"to_play"`
	MoveNumber int           `json:"move_number"`
	Stones     []StoneView   `json:"stones"`
	Groups     []GroupView   `json:"groups"`
	Captures   map[Color]int `json:"captures"`
}

// Snapshot copies the current state.
func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{
		Size:       b.size,
		Rules:      b.rules,
		ToPlay:     b.toPlay,
		MoveNumber: b.moves,
		Stones:     make([]StoneView, 0, len(b.grid)),
		Groups:     make([]GroupView, 0, len(b.groups)),
		Captures: map[Color]int{
			Black: b.captures[Black],
			White: b.captures[White],
		},
	}
	for _, s := range b.Stones() {
		snap.Stones = append(snap.Stones, StoneView{Point: s.point, Color: s.color})
	}
	for _, g := range b.Groups() {
		snap.Groups = append(snap.Groups, GroupView{
			Color:     g.color,
			Stones:    g.Stones(),
			Liberties: g.Liberties(),
		})
	}
	return snap
}

// Grid returns the position as rows of colours, indexed [y][x]; zero marks
// an empty point.
func (s Snapshot) Grid() [][]Color {
	grid := make([][]Color, s.Size)
	for y := range grid {
		grid[y] = make([]Color, s.Size)
	}
	for _, st := range s.Stones {
		if st.Point.In(s.Size) {
			grid[st.Point.Y][st.Point.X] = st.Color
		}
	}
	return grid
}
