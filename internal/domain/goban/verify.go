package goban

import "fmt"

// Verify checks that the grid, the stones and the groups agree:
// every stone belongs to exactly one live group of its colour, every
// liberty set matches the occupancy, and no two groups of one colour touch.
func (b *Board) Verify() error {
	members := 0
	for g := range b.groups {
		if g.merged || g.Len() == 0 {
			return fmt.Errorf("%w: empty or merged group at %s", ErrInvariant, g.origin())
		}
		for s := range g.stones {
			if s.group != g {
				return fmt.Errorf("%w: stone %s points at another group", ErrInvariant, s.point)
			}
			if s.color != g.color {
				return fmt.Errorf("%w: %s stone %s in %s group", ErrInvariant, s.color, s.point, g.color)
			}
			if b.grid[s.point] != s {
				return fmt.Errorf("%w: stone %s is not on the grid", ErrInvariant, s.point)
			}
		}
		members += g.Len()

		want := make(map[Point]struct{}, len(g.liberties))
		var buf [4]Point
		for s := range g.stones {
			for _, n := range s.point.neighbours(b.size, buf[:0]) {
				if _, occupied := b.grid[n]; !occupied {
					want[n] = struct{}{}
				}
			}
		}
		if len(want) != len(g.liberties) {
			return fmt.Errorf("%w: group at %s has %d liberties, want %d", ErrInvariant, g.origin(), len(g.liberties), len(want))
		}
		for p := range want {
			if _, ok := g.liberties[p]; !ok {
				return fmt.Errorf("%w: group at %s misses liberty %s", ErrInvariant, g.origin(), p)
			}
		}
		if g.Captured() {
			return fmt.Errorf("%w: group at %s has no liberties", ErrInvariant, g.origin())
		}
	}

	if members != len(b.grid) {
		return fmt.Errorf("%w: %d stones on the grid, %d in groups", ErrInvariant, len(b.grid), members)
	}

	var buf [4]Point
	for p, s := range b.grid {
		if s.point != p {
			return fmt.Errorf("%w: stone %s stored at %s", ErrInvariant, s.point, p)
		}
		if _, live := b.groups[s.group]; !live {
			return fmt.Errorf("%w: stone %s has no live group", ErrInvariant, p)
		}
		for _, n := range p.neighbours(b.size, buf[:0]) {
			if other, ok := b.grid[n]; ok && other.color == s.color && other.group != s.group {
				return fmt.Errorf("%w: adjacent %s groups at %s and %s", ErrInvariant, s.color, p, n)
			}
		}
	}
	return nil
}
