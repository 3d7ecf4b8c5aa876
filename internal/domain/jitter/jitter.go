// Package jitter wraps move placement with a random nudge of the target point.
package jitter

import (
	"math/rand"

	"goban/internal/domain/goban"
)

// Player is the part of a board the decorator needs.
type Player interface {
	PlayStone(p goban.Point) (goban.Move, error)
	Size() int
}

// Placer shifts every placement by up to one point on each axis before
// handing it to the wrapped Player. The board underneath stays deterministic;
// all randomness comes from the injected generator.
type Placer struct {
	next Player
	rng  *rand.Rand
}

func New(next Player, rng *rand.Rand) *Placer {
	return &Placer{next: next, rng: rng}
}

// PlayStone plays at a perturbed version of p.
func (j *Placer) PlayStone(p goban.Point) (goban.Move, error) {
	return j.next.PlayStone(j.Perturb(p))
}

func (j *Placer) Size() int {
	return j.next.Size()
}

// Perturb moves each coordinate by ±1 with probability 1/2, then clamps the
// result to the board.
func (j *Placer) Perturb(p goban.Point) goban.Point {
	p.X = clamp(p.X+j.offset(), j.next.Size())
	p.Y = clamp(p.Y+j.offset(), j.next.Size())
	return p
}

func (j *Placer) offset() int {
	if j.rng.Float64() >= 0.5 {
		return 0
	}
	if j.rng.Float64() < 0.5 {
		return 1
	}
	return -1
}

func clamp(v, size int) int {
	if v < 0 {
		return 0
	}
	if v >= size {
		return size - 1
	}
	return v
}
