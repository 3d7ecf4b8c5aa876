// Package script runs move sequences written in YAML against a fresh board
// and checks the outcome of every step.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v2"

	"goban/internal/domain/goban"
)

var (
	ErrScript   = errors.New("invalid script")
	ErrMismatch = errors.New("script expectation not met")
)

// Script is one scenario: a board, the moves to make and what must follow.
type Script struct {
	Name   string      `yaml:"name"`
	Size   int         `yaml:"size"`
	Rules  goban.Rules `yaml:"rules"`
	Steps  []Step      `yaml:"moves"`
	Expect *Expect     `yaml:"expect"`
}

// Step is a placement ("play: [x, y]") or a pass ("pass: true"). Reject names
// the error a placement must fail with: out_of_bounds, occupied or suicide.
type Step struct {
	Play     []int   `yaml:"play"`
	Pass     bool    `yaml:"pass"`
	Reject   string  `yaml:"reject"`
	Captures [][]int `yaml:"captures"`
	Suicide  bool    `yaml:"suicide"`
}

// Expect describes the final position. Board lists rows top to bottom with
// X for black, O for white and . for empty points.
type Expect struct {
	ToPlay    string         `yaml:"to_play"`
	Prisoners map[string]int `yaml:"prisoners"`
	Stones    *int           `yaml:"stones"`
	Board     string         `yaml:"board"`
}

var rejections = map[string]error{
	"out_of_bounds": goban.ErrOutOfBounds,
	"occupied":      goban.ErrOccupied,
	"suicide":       goban.ErrSuicide,
}

// Load decodes a script; unknown keys are an error.
func Load(r io.Reader) (*Script, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := yaml.UnmarshalStrict(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	if s.Size == 0 {
		s.Size = goban.DefaultSize
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrScript, i+1, err)
		}
	}
	return &s, nil
}

func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

func (st Step) validate() error {
	switch {
	case st.Pass && st.Play != nil:
		return errors.New("a step is either play or pass")
	case !st.Pass && len(st.Play) != 2:
		return errors.New("play needs [x, y]")
	case st.Reject != "" && rejections[st.Reject] == nil:
		return fmt.Errorf("unknown rejection %q", st.Reject)
	}
	for _, c := range st.Captures {
		if len(c) != 2 {
			return errors.New("captures need [x, y] pairs")
		}
	}
	return nil
}

// Run plays the script on a new board and returns it. The board is also
// returned on a mismatch, for diagnostics.
func (s *Script) Run() (*goban.Board, error) {
	b, err := goban.New(s.Size, s.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	for i, step := range s.Steps {
		if err := step.run(b); err != nil {
			return b, fmt.Errorf("%s: step %d: %w", s.Name, i+1, err)
		}
		if err := b.Verify(); err != nil {
			return b, fmt.Errorf("%s: step %d: %w", s.Name, i+1, err)
		}
	}
	if s.Expect != nil {
		if err := s.Expect.check(b); err != nil {
			return b, fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return b, nil
}

func (st Step) run(b *goban.Board) error {
	if st.Pass {
		b.Pass()
		return nil
	}

	p := goban.Pt(st.Play[0], st.Play[1])
	move, err := b.PlayStone(p)
	if st.Reject != "" {
		if !errors.Is(err, rejections[st.Reject]) {
			return fmt.Errorf("%w: %s should be rejected as %s, got %v", ErrMismatch, p, st.Reject, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMismatch, p, err)
	}

	want := make([]goban.Point, 0, len(st.Captures))
	for _, c := range st.Captures {
		want = append(want, goban.Pt(c[0], c[1]))
	}
	slices.SortFunc(want, goban.ComparePoints)
	if !slices.Equal(move.Captured, want) {
		return fmt.Errorf("%w: %s captured %v, want %v", ErrMismatch, p, move.Captured, want)
	}
	if move.Suicide != st.Suicide {
		return fmt.Errorf("%w: %s suicide = %t, want %t", ErrMismatch, p, move.Suicide, st.Suicide)
	}
	return nil
}

func (e *Expect) check(b *goban.Board) error {
	if e.ToPlay != "" {
		c, err := goban.ParseColor(e.ToPlay)
		if err != nil {
			return fmt.Errorf("%w: to_play: %w", ErrScript, err)
		}
		if b.CurrentTurn() != c {
			return fmt.Errorf("%w: %s to play, want %s", ErrMismatch, b.CurrentTurn(), c)
		}
	}
	for name, want := range e.Prisoners {
		c, err := goban.ParseColor(name)
		if err != nil {
			return fmt.Errorf("%w: prisoners: %w", ErrScript, err)
		}
		if got := b.Captures(c); got != want {
			return fmt.Errorf("%w: %s took %d prisoners, want %d", ErrMismatch, c, got, want)
		}
	}
	if e.Stones != nil && len(b.Stones()) != *e.Stones {
		return fmt.Errorf("%w: %d stones on the board, want %d", ErrMismatch, len(b.Stones()), *e.Stones)
	}
	if e.Board != "" {
		got, want := Diagram(b.Snapshot()), normalize(e.Board)
		if got != want {
			return fmt.Errorf("%w: board\n%s\nwant\n%s", ErrMismatch, got, want)
		}
	}
	return nil
}

// Diagram is the board in the expectation format: one line per row, points
// separated by single spaces.
func Diagram(snap goban.Snapshot) string {
	lines := make([]string, 0, snap.Size)
	for _, row := range snap.Grid() {
		cells := make([]string, len(row))
		for x, c := range row {
			switch c {
			case goban.Black:
				cells[x] = "X"
			case goban.White:
				cells[x] = "O"
			default:
				cells[x] = "."
			}
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func normalize(board string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(board), "\n") {
		lines = append(lines, strings.Join(strings.Fields(line), " "))
	}
	return strings.Join(lines, "\n")
}
