package goban

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

// pass marks a pass in a move sequence given to play.
var pass = Point{-1, -1}

func play(t *testing.T, b *Board, points ...Point) []Move {
	t.Helper()
	moves := make([]Move, 0, len(points))
	for i, p := range points {
		if p == pass {
			moves = append(moves, b.Pass())
			continue
		}
		m, err := b.PlayStone(p)
		if err != nil {
			t.Fatalf("move %d at %s: %v", i, p, err)
		}
		moves = append(moves, m)
	}
	if err := b.Verify(); err != nil {
		t.Fatal(err)
	}
	return moves
}

func newBoard(t *testing.T, size int, suicide SuicidePolicy) *Board {
	t.Helper()
	b, err := New(size, Rules{Suicide: suicide})
	if err != nil {
		t.Fatalf("New(%d): %v", size, err)
	}
	return b
}

func TestNew(t *testing.T) {
	b := NewDefault()
	if b.Size() != 19 {
		t.Errorf("default size is %d, want 19", b.Size())
	}
	if b.CurrentTurn() != Black || b.NextTurn() != White {
		t.Errorf("turns are %s/%s, want black/white", b.CurrentTurn(), b.NextTurn())
	}
	if b.Rules().Suicide != SuicideStrict {
		t.Errorf("default suicide rule is %q", b.Rules().Suicide)
	}

	for _, size := range []int{0, -3, 26} {
		if _, err := New(size, Rules{}); !errors.Is(err, ErrBoardSize) {
			t.Errorf("New(%d) error = %v, want ErrBoardSize", size, err)
		}
	}
	if _, err := New(9, Rules{Suicide: "sometimes"}); !errors.Is(err, ErrSuicidePolicy) {
		t.Errorf("unknown suicide rule error = %v", err)
	}
}

func TestSingletonLiberties(t *testing.T) {
	testTable := []struct {
		name string
		p    Point
		want int
	}{
		{"corner", Pt(0, 0), 2},
		{"far corner", Pt(18, 18), 2},
		{"edge", Pt(0, 7), 3},
		{"top edge", Pt(7, 0), 3},
		{"interior", Pt(9, 9), 4},
	}
	for _, tc := range testTable {
		t.Run(tc.name, func(t *testing.T) {
			b := NewDefault()
			play(t, b, tc.p)
			s, ok := b.Search(tc.p)
			if !ok {
				t.Fatal("stone not found after placement")
			}
			if s.Group().Len() != 1 {
				t.Errorf("group has %d stones", s.Group().Len())
			}
			if got := s.Group().LibertyCount(); got != tc.want {
				t.Errorf("liberties = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTurnAlternation(t *testing.T) {
	b := NewDefault()
	want := []Color{Black, White, Black, White, Black}
	moves := play(t, b, Pt(3, 3), Pt(15, 15), pass, pass)
	for i, m := range moves {
		if m.Color != want[i] {
			t.Errorf("move %d colour = %s, want %s", i, m.Color, want[i])
		}
		if m.Number != i+1 {
			t.Errorf("move %d number = %d", i, m.Number)
		}
	}
	if b.CurrentTurn() != want[len(moves)] {
		t.Errorf("turn = %s, want %s", b.CurrentTurn(), want[len(moves)])
	}
	if len(b.Stones()) != 2 {
		t.Errorf("passes changed the grid: %d stones", len(b.Stones()))
	}
}

func TestSearch(t *testing.T) {
	b := NewDefault()
	if _, ok := b.Search(Pt(4, 4)); ok {
		t.Fatal("found a stone on an empty board")
	}
	play(t, b, Pt(4, 4), Pt(5, 5))
	for p, c := range map[Point]Color{Pt(4, 4): Black, Pt(5, 5): White} {
		s, ok := b.Search(p)
		if !ok {
			t.Fatalf("no stone at %s", p)
		}
		if s.Color() != c || s.Point() != p {
			t.Errorf("stone at %s is %s %s", p, s.Color(), s.Point())
		}
	}
}

func TestJoinSingleGroup(t *testing.T) {
	b := NewDefault()
	play(t, b, Pt(3, 3), Pt(10, 10), Pt(3, 4))

	s, _ := b.Search(Pt(3, 4))
	g := s.Group()
	if g.Len() != 2 {
		t.Fatalf("group has %d stones, want 2", g.Len())
	}
	if first, _ := b.Search(Pt(3, 3)); first.Group() != g {
		t.Error("stones are in different groups")
	}
	want := []Point{Pt(3, 2), Pt(2, 3), Pt(4, 3), Pt(2, 4), Pt(4, 4), Pt(3, 5)}
	if got := g.Liberties(); !reflect.DeepEqual(got, want) {
		t.Errorf("liberties = %v, want %v", got, want)
	}
	if len(b.Groups()) != 2 {
		t.Errorf("%d groups on the board, want 2", len(b.Groups()))
	}
}

func TestMergeSeveralGroups(t *testing.T) {
	b := NewDefault()
	play(t, b, Pt(2, 1), pass, Pt(1, 2), pass, Pt(3, 2), pass, Pt(2, 3), pass)
	if len(b.Groups()) != 4 {
		t.Fatalf("%d groups before the merge, want 4", len(b.Groups()))
	}

	play(t, b, Pt(2, 2))
	groups := b.Groups()
	if len(groups) != 1 {
		t.Fatalf("%d groups after the merge, want 1", len(groups))
	}
	if groups[0].Len() != 5 {
		t.Errorf("merged group has %d stones", groups[0].Len())
	}
	if groups[0].LibertyCount() != 8 {
		t.Errorf("merged group has %d liberties, want 8: %v", groups[0].LibertyCount(), groups[0].Liberties())
	}
	for _, s := range b.Stones() {
		if s.Group() != groups[0] {
			t.Errorf("stone %s still points at an old group", s.Point())
		}
	}
}

func TestCaptureSingleStone(t *testing.T) {
	b := NewDefault()
	moves := play(t, b, Pt(1, 1), Pt(0, 1), pass, Pt(1, 0), pass, Pt(1, 2), pass)
	if n := len(moves); n != 7 {
		t.Fatalf("played %d moves", n)
	}

	m, err := b.PlayStone(Pt(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.Captured, []Point{Pt(1, 1)}) {
		t.Errorf("captured = %v, want [(1,1)]", m.Captured)
	}
	if _, ok := b.Search(Pt(1, 1)); ok {
		t.Error("captured stone is still on the board")
	}
	if b.Captures(White) != 1 || b.Captures(Black) != 0 {
		t.Errorf("captures = %d/%d", b.Captures(Black), b.Captures(White))
	}
	s, _ := b.Search(Pt(1, 0))
	if got := s.Group().Liberties(); !reflect.DeepEqual(got, []Point{Pt(0, 0), Pt(2, 0), Pt(1, 1)}) {
		t.Errorf("neighbour liberties = %v", got)
	}
	if err := b.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestCaptureGroup(t *testing.T) {
	b := newBoard(t, 5, SuicideStrict)
	// black pair on the top edge, white closes it in
	play(t, b, Pt(1, 0), Pt(0, 0), Pt(2, 0), Pt(1, 1), pass, Pt(2, 1), pass)

	m, err := b.PlayStone(Pt(3, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.Captured, []Point{Pt(1, 0), Pt(2, 0)}) {
		t.Errorf("captured = %v", m.Captured)
	}
	if b.Captures(White) != 2 {
		t.Errorf("white captured %d", b.Captures(White))
	}
	corner, _ := b.Search(Pt(0, 0))
	if got := corner.Group().Liberties(); !reflect.DeepEqual(got, []Point{Pt(1, 0), Pt(0, 1)}) {
		t.Errorf("corner liberties = %v", got)
	}
	if err := b.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestCaptureBeforeSelfCheck(t *testing.T) {
	for _, rule := range []SuicidePolicy{SuicideStrict, SuicidePermissive} {
		t.Run(string(rule), func(t *testing.T) {
			b := newBoard(t, 19, rule)
			play(t, b, Pt(2, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1))

			if err := b.Check(Pt(0, 0)); err != nil {
				t.Fatalf("Check: %v", err)
			}
			m, err := b.PlayStone(Pt(0, 0))
			if err != nil {
				t.Fatalf("capturing move rejected: %v", err)
			}
			if m.Suicide {
				t.Error("capturing move reported as suicide")
			}
			if !reflect.DeepEqual(m.Captured, []Point{Pt(1, 0)}) {
				t.Errorf("captured = %v", m.Captured)
			}
			s, ok := b.Search(Pt(0, 0))
			if !ok {
				t.Fatal("capturing stone was removed")
			}
			if got := s.Group().Liberties(); !reflect.DeepEqual(got, []Point{Pt(1, 0)}) {
				t.Errorf("liberties = %v, want [(1,0)]", got)
			}
			if err := b.Verify(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestSuicideStrict(t *testing.T) {
	b := newBoard(t, 19, SuicideStrict)
	play(t, b, Pt(10, 10), Pt(1, 0), Pt(10, 11), Pt(0, 1))
	before := b.Snapshot()

	_, err := b.PlayStone(Pt(0, 0))
	if !errors.Is(err, ErrSuicide) {
		t.Fatalf("error = %v, want ErrSuicide", err)
	}
	if !reflect.DeepEqual(before, b.Snapshot()) {
		t.Error("rejected suicide changed the board")
	}
	if err := b.Check(Pt(0, 0)); !errors.Is(err, ErrSuicide) {
		t.Errorf("Check error = %v", err)
	}
}

func TestSuicidePermissive(t *testing.T) {
	b := newBoard(t, 19, SuicidePermissive)
	play(t, b, Pt(10, 10), Pt(1, 0), Pt(10, 11), Pt(0, 1))

	m, err := b.PlayStone(Pt(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Suicide || !reflect.DeepEqual(m.Captured, []Point{Pt(0, 0)}) {
		t.Errorf("move = %+v, want self-capture of (0,0)", m)
	}
	if _, ok := b.Search(Pt(0, 0)); ok {
		t.Error("suicide stone stayed on the board")
	}
	if b.Captures(White) != 1 {
		t.Errorf("white prisoners = %d, want 1", b.Captures(White))
	}
	if b.CurrentTurn() != White {
		t.Errorf("turn = %s after suicide", b.CurrentTurn())
	}
	for _, p := range []Point{Pt(1, 0), Pt(0, 1)} {
		s, _ := b.Search(p)
		if s.Group().LibertyCount() != 3 {
			t.Errorf("%s liberties = %v", p, s.Group().Liberties())
		}
	}
	if err := b.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestRejectedMoves(t *testing.T) {
	testTable := []struct {
		p    Point
		want error
	}{
		{Pt(3, 3), ErrOccupied},
		{Pt(-1, 0), ErrOutOfBounds},
		{Pt(0, 19), ErrOutOfBounds},
		{Pt(19, 19), ErrOutOfBounds},
	}

	b := NewDefault()
	play(t, b, Pt(3, 3))
	before := b.Snapshot()

	for _, tc := range testTable {
		_, err := b.PlayStone(tc.p)
		if !errors.Is(err, tc.want) {
			t.Errorf("PlayStone(%s) error = %v, want %v", tc.p, err, tc.want)
		}
		var me *MoveError
		if !errors.As(err, &me) || me.Point != tc.p || me.Color != White {
			t.Errorf("PlayStone(%s) error %v does not carry the attempted move", tc.p, err)
		}
	}
	if !reflect.DeepEqual(before, b.Snapshot()) {
		t.Error("rejected moves changed the board")
	}
}

func TestRecomputeLibertiesIdempotent(t *testing.T) {
	b := NewDefault()
	play(t, b, Pt(3, 3), Pt(3, 4), Pt(4, 3), Pt(4, 4), Pt(2, 3))
	for _, g := range b.Groups() {
		g.recomputeLiberties(b)
		first := g.Liberties()
		g.recomputeLiberties(b)
		if second := g.Liberties(); !reflect.DeepEqual(first, second) {
			t.Errorf("liberties changed between calls: %v then %v", first, second)
		}
	}
}

func TestMergeDifferentColours(t *testing.T) {
	b := NewDefault()
	play(t, b, Pt(3, 3), Pt(3, 4))
	black, _ := b.Search(Pt(3, 3))
	white, _ := b.Search(Pt(3, 4))

	if err := black.Group().merge(white.Group()); !errors.Is(err, ErrInvalidMerge) {
		t.Fatalf("merge error = %v, want ErrInvalidMerge", err)
	}
	if err := b.Verify(); err != nil {
		t.Fatalf("failed merge touched the board: %v", err)
	}
}

func TestFailedJoinLeavesBoardUntouched(t *testing.T) {
	b := NewDefault()
	play(t, b, Pt(3, 3), pass)
	friend, _ := b.Search(Pt(3, 3))
	friend.Group().color = White

	_, err := b.PlayStone(Pt(3, 4))
	if !errors.Is(err, ErrInvalidMerge) {
		t.Fatalf("error = %v, want ErrInvalidMerge", err)
	}
	if _, ok := b.Search(Pt(3, 4)); ok {
		t.Error("stone of the failed move is still on the board")
	}
	if b.CurrentTurn() != Black || b.MoveNumber() != 2 || friend.Group().Len() != 1 {
		t.Errorf("turn %s, move %d, group of %d after failed move", b.CurrentTurn(), b.MoveNumber(), friend.Group().Len())
	}

	friend.Group().color = Black
	if err := b.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestStoneRemoveDiscardsEmptyGroup(t *testing.T) {
	b := NewDefault()
	play(t, b, Pt(3, 3), pass, Pt(3, 4))
	s, _ := b.Search(Pt(3, 3))
	g := s.Group()

	s.remove(b)
	if s.Group() != nil {
		t.Error("removed stone keeps its group")
	}
	if g.Len() != 1 {
		t.Errorf("group has %d stones after removal", g.Len())
	}
	if len(b.Groups()) != 1 {
		t.Errorf("%d groups, want 1", len(b.Groups()))
	}

	last, _ := b.Search(Pt(3, 4))
	last.remove(b)
	if len(b.Groups()) != 0 {
		t.Errorf("empty group was kept")
	}
	if len(b.Stones()) != 0 {
		t.Errorf("%d stones left", len(b.Stones()))
	}
}

func TestReplay(t *testing.T) {
	b := NewDefault()
	moves := play(t, b, Pt(1, 1), Pt(0, 1), pass, Pt(1, 0), pass, Pt(1, 2), pass, Pt(2, 1))

	replayed := NewDefault()
	if err := replayed.Replay(moves); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Snapshot(), replayed.Snapshot()) {
		t.Error("replayed board differs")
	}

	wrong := NewDefault()
	err := wrong.Replay([]Move{{Color: White, Point: Pt(3, 3)}})
	if !errors.Is(err, ErrWrongPlayer) {
		t.Errorf("replay out of turn error = %v", err)
	}
}

func TestRandomGamesKeepInvariants(t *testing.T) {
	for _, rule := range []SuicidePolicy{SuicideStrict, SuicidePermissive} {
		t.Run(string(rule), func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			b := newBoard(t, 7, rule)
			for i := 0; i < 3000; i++ {
				if rng.Intn(40) == 0 {
					b.Pass()
					continue
				}
				p := Pt(rng.Intn(b.Size()), rng.Intn(b.Size()))
				checkErr := b.Check(p)
				_, err := b.PlayStone(p)
				if (checkErr == nil) != (err == nil) {
					t.Fatalf("move %d at %s: Check says %v, PlayStone says %v", i, p, checkErr, err)
				}
				if err := b.Verify(); err != nil {
					t.Fatalf("move %d at %s: %v\n", i, p, err)
				}
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	b := newBoard(t, 5, SuicideStrict)
	play(t, b, Pt(0, 0), Pt(4, 4))
	snap := b.Snapshot()

	grid := snap.Grid()
	if grid[0][0] != Black || grid[4][4] != White || grid[2][2] != 0 {
		t.Errorf("grid = %v", grid)
	}
	if snap.ToPlay != Black || snap.MoveNumber != 2 || len(snap.Groups) != 2 {
		t.Errorf("snapshot = %+v", snap)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ToPlay != Black || decoded.Stones[1].Color != White {
		t.Errorf("decoded snapshot = %+v", decoded)
	}

	// the copy does not follow the board
	play(t, b, Pt(2, 2))
	if len(snap.Stones) != 2 {
		t.Error("snapshot changed with the board")
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{"black": Black, "B": Black, " white ": White, "w": White} {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseColor("red"); !errors.Is(err, ErrColor) {
		t.Errorf("ParseColor(red) error = %v", err)
	}
}
