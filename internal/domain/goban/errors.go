package goban

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds means the point is outside the board
	ErrOutOfBounds = errors.New("point is out of bounds")
	// ErrOccupied means there is already a stone at the point
	ErrOccupied = errors.New("point is occupied")
	// ErrSuicide means the placed stone's group would have no liberties
	ErrSuicide = errors.New("suicide is not allowed")
	// ErrInvalidMerge means two groups of different colours were about to be merged.
	// It is never reachable from valid input and indicates a defect.
	ErrInvalidMerge = errors.New("cannot merge groups of different colours")
	// ErrBoardSize means New was called with an unsupported size
	ErrBoardSize = errors.New("board size is out of range (from 1x1 to 25x25)")
	// ErrColor means a colour value or name is not black or white
	ErrColor = errors.New("only black and white stones exist")
	// ErrSuicidePolicy means a suicide rule name was not recognised
	ErrSuicidePolicy = errors.New("unknown suicide rule")
	// ErrWrongPlayer means a replayed move has the colour that is not to play
	ErrWrongPlayer = errors.New("wrong player")
	// ErrInvariant means the grid, stones and groups disagree
	ErrInvariant = errors.New("board invariant violated")
)

// MoveError wraps a rejection with the attempted move.
type MoveError struct {
	Err   error
	Point Point
	Color Color
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s at %s rejected: %s", e.Color, e.Point, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
