/*
Package goban implements the rules of Go: stone placement, grouping of
connected same-colour stones, liberties, capture, turn order and pass.

Suicide rules:

    strict      (default)  a move leaving its own group without liberties is rejected
    permissive             such a move is played and its group is captured at once

Scoring and ko are not implemented.*/
package goban

import (
	"fmt"
	"slices"
	"strings"
)

const (
	DefaultSize = 19
	MinSize     = 1
	MaxSize     = 25
)

// SuicidePolicy decides what happens to a move that leaves its own group
// without liberties after captures are resolved.
type SuicidePolicy string

const (
	SuicideStrict     SuicidePolicy = "strict"
	SuicidePermissive SuicidePolicy = "permissive"
)

// ParseSuicidePolicy maps a rule name to a policy; the empty name is strict.
func ParseSuicidePolicy(name string) (SuicidePolicy, error) {
	switch SuicidePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", SuicideStrict:
		return SuicideStrict, nil
	case SuicidePermissive:
		return SuicidePermissive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrSuicidePolicy, name)
}

// Rules configures the variant played on a Board.
type Rules struct {
	Suicide SuicidePolicy `json:"suicide" bson:"suicide" yaml:"suicide"`
}

// Move records an accepted placement or pass.
type Move struct {
	Number   int     `json:"number" bson:"number"`
	Color    Color   `json:"color" bson:"color"`
	Point    Point   `json:"point" bson:"point"`
	Pass     bool    `json:"pass,omitempty" bson:"pass,omitempty"`
	Captured []Point `json:"captured,omitempty" bson:"captured,omitempty"`
	// Suicide is set when the placed stone's own group was removed.
	Suicide bool `json:"suicide,omitempty" bson:"suicide,omitempty"`
}

// Board holds the grid, the live groups and whose turn it is.
type Board struct {
	size     int
	rules    Rules
	grid     map[Point]*Stone
	groups   map[*Group]struct{}
	toPlay   Color
	captures [3]int // prisoners taken, indexed by Color
	moves    int
}

// New creates an empty size x size board with Black to play.
func New(size int, rules Rules) (*Board, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: desired size is %[2]dx%[2]d", ErrBoardSize, size)
	}
	policy, err := ParseSuicidePolicy(string(rules.Suicide))
	if err != nil {
		return nil, err
	}
	rules.Suicide = policy

	return &Board{
		size:   size,
		rules:  rules,
		grid:   make(map[Point]*Stone, size*size),
		groups: make(map[*Group]struct{}),
		toPlay: Black,
	}, nil
}

// NewDefault creates a 19x19 board with the strict suicide rule.
func NewDefault() *Board {
	b, _ := New(DefaultSize, Rules{})
	return b
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) Rules() Rules {
	return b.rules
}

// CurrentTurn is the colour of the next stone to be placed.
func (b *Board) CurrentTurn() Color {
	return b.toPlay
}

// NextTurn is the colour that plays after the current turn.
func (b *Board) NextTurn() Color {
	return b.toPlay.Opponent()
}

// MoveNumber counts accepted placements and passes.
func (b *Board) MoveNumber() int {
	return b.moves
}

// Captures returns the number of stones taken by c.
func (b *Board) Captures(c Color) int {
	if !c.Valid() {
		return 0
	}
	return b.captures[c]
}

// Search returns the stone at p, if any.
func (b *Board) Search(p Point) (*Stone, bool) {
	s, ok := b.grid[p]
	return s, ok
}

// Check reports whether the player to move may place a stone at p, without
// changing anything.
func (b *Board) Check(p Point) error {
	if err := b.check(p, b.toPlay); err != nil {
		return &MoveError{Err: err, Point: p, Color: b.toPlay}
	}
	return nil
}

// PlayStone places a stone of the current colour at p. Opponent groups left
// without liberties are captured before the new stone's own group is
// evaluated. A rejected move leaves the board and the turn untouched.
func (b *Board) PlayStone(p Point) (Move, error) {
	color := b.toPlay
	if err := b.check(p, color); err != nil {
		return Move{}, &MoveError{Err: err, Point: p, Color: color}
	}

	stone := &Stone{point: p, color: color}
	b.grid[p] = stone
	if err := b.join(stone); err != nil {
		delete(b.grid, p)
		return Move{}, &MoveError{Err: err, Point: p, Color: color}
	}

	move := Move{Color: color, Point: p}
	move.Captured = b.resolve(stone)
	move.Suicide = stone.group == nil

	b.toPlay = color.Opponent()
	b.moves++
	move.Number = b.moves
	return move, nil
}

// Pass hands the turn to the opponent.
func (b *Board) Pass() Move {
	color := b.toPlay
	b.toPlay = color.Opponent()
	b.moves++
	return Move{Number: b.moves, Color: color, Pass: true}
}

// Replay applies a recorded sequence of moves in order.
func (b *Board) Replay(moves []Move) error {
	for i, m := range moves {
		if m.Color != b.toPlay {
			return fmt.Errorf("move %d: %w: %s to play, got %s", i+1, ErrWrongPlayer, b.toPlay, m.Color)
		}
		if m.Pass {
			b.Pass()
			continue
		}
		if _, err := b.PlayStone(m.Point); err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return nil
}

// Stones returns every stone on the board in row-major order.
func (b *Board) Stones() []*Stone {
	stones := make([]*Stone, 0, len(b.grid))
	for _, s := range b.grid {
		stones = append(stones, s)
	}
	slices.SortFunc(stones, func(a, c *Stone) int { return ComparePoints(a.point, c.point) })
	return stones
}

// Groups returns the live groups ordered by their first stone.
func (b *Board) Groups() []*Group {
	groups := make([]*Group, 0, len(b.groups))
	for g := range b.groups {
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, c *Group) int { return ComparePoints(a.origin(), c.origin()) })
	return groups
}

func (b *Board) check(p Point, c Color) error {
	if !p.In(b.size) {
		return ErrOutOfBounds
	}
	if _, occupied := b.grid[p]; occupied {
		return ErrOccupied
	}
	if b.rules.Suicide != SuicidePermissive && b.suicidal(p, c) {
		return ErrSuicide
	}
	return nil
}

// suicidal predicts from the current liberty sets whether a c stone at the
// empty point p would end up without liberties.
func (b *Board) suicidal(p Point, c Color) bool {
	var buf [4]Point
	for _, n := range p.neighbours(b.size, buf[:0]) {
		s, occupied := b.grid[n]
		switch {
		case !occupied:
			return false
		case s.color == c && s.group.LibertyCount() > 1:
			return false
		case s.color != c && s.group.LibertyCount() == 1:
			return false
		}
	}
	return true
}

// join puts s into a group: a new one, the single adjacent friendly group,
// or all adjacent friendly groups merged together.
func (b *Board) join(s *Stone) error {
	var buf [4]Point
	friends := make([]*Group, 0, 4)
	for _, n := range s.point.neighbours(b.size, buf[:0]) {
		other, occupied := b.grid[n]
		if !occupied || other.color != s.color {
			continue
		}
		if !slices.Contains(friends, other.group) {
			friends = append(friends, other.group)
		}
	}

	if len(friends) == 0 {
		b.groups[newGroup(s)] = struct{}{}
		return nil
	}
	for _, g := range friends {
		if g.color != s.color || g.merged {
			return ErrInvalidMerge
		}
	}

	host := friends[0]
	host.add(s)
	for _, g := range friends[1:] {
		if err := host.merge(g); err != nil {
			return err
		}
		delete(b.groups, g)
	}
	return nil
}

// resolve brings every liberty set up to date after s was placed and removes
// dead groups: opponents first, then the group holding s.
func (b *Board) resolve(s *Stone) []Point {
	own := s.group

	dead := make([]*Group, 0)
	for g := range b.groups {
		if g == own {
			continue
		}
		g.recomputeLiberties(b)
		if g.Captured() {
			dead = append(dead, g)
		}
	}

	var captured []Point
	for _, g := range dead {
		captured = append(captured, b.capture(g)...)
	}
	if len(captured) > 0 {
		// friendly groups bordering the removed stones gained liberties
		b.refresh(s.color)
	}

	own.recomputeLiberties(b)
	if own.Captured() {
		captured = append(captured, b.capture(own)...)
		b.refresh(s.color.Opponent())
	}

	sortPoints(captured)
	return captured
}

func (b *Board) refresh(c Color) {
	for g := range b.groups {
		if g.color == c {
			g.recomputeLiberties(b)
		}
	}
}

// capture removes every stone of g and credits them to the opponent.
func (b *Board) capture(g *Group) []Point {
	points := g.Stones()
	for s := range g.stones {
		s.remove(b)
	}
	b.captures[g.color.Opponent()] += len(points)
	return points
}

// ComparePoints orders points row by row, for slices.SortFunc.
func ComparePoints(a, c Point) int {
	switch {
	case a.less(c):
		return -1
	case c.less(a):
		return 1
	}
	return 0
}
