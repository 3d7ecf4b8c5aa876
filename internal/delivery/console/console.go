// Package console is a hot-seat text adapter: both players type their moves
// into the same stream and see the board redrawn after each one.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"goban/internal/domain/goban"
	errs "goban/internal/errors"
	"goban/internal/render"
)

const help = "commands: x y | click px py | p, pass | show | q, quit"

var errSyntax = errors.New("expected x y, click px py, pass, show or quit")

type Console struct {
	table  Table
	layout render.Layout
	in     io.Reader
	out    io.Writer
	log    *zap.SugaredLogger
}

// New builds a console over table. layout converts click coordinates.
func New(table Table, layout render.Layout, in io.Reader, out io.Writer, log *zap.SugaredLogger) *Console {
	return &Console{table: table, layout: layout, in: in, out: out, log: log}
}

// Run reads commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	snap, err := c.table.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, help)
	c.show(snap)

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprintf(c.out, "%s> ", snap.ToPlay)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(strings.ToLower(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "q", "quit":
			return nil
		case "show":
			if snap, err = c.table.Snapshot(ctx); err != nil {
				return err
			}
			c.show(snap)
			continue
		}

		move, next, err := c.apply(ctx, fields)
		switch {
		case errors.Is(err, errSyntax):
			fmt.Fprintln(c.out, err)
		case err != nil && isRejection(err):
			fmt.Fprintf(c.out, "illegal move: %v\n", err)
		case err != nil:
			c.log.Warnf("console move failed: %v", err)
			fmt.Fprintf(c.out, "move failed: %v\n", err)
		default:
			snap = next
			c.report(move)
			c.show(snap)
		}
	}
}

func (c *Console) apply(ctx context.Context, fields []string) (goban.Move, goban.Snapshot, error) {
	switch {
	case len(fields) == 1 && (fields[0] == "p" || fields[0] == "pass"):
		return c.table.Pass(ctx)
	case len(fields) == 3 && fields[0] == "click":
		px, errX := strconv.ParseFloat(fields[1], 64)
		py, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			return goban.Move{}, goban.Snapshot{}, errSyntax
		}
		p, ok := c.layout.Point(px, py)
		if !ok {
			return goban.Move{}, goban.Snapshot{}, fmt.Errorf("%w: click at %v,%v", goban.ErrOutOfBounds, px, py)
		}
		return c.table.Play(ctx, p)
	case len(fields) == 2:
		x, errX := strconv.Atoi(fields[0])
		y, errY := strconv.Atoi(fields[1])
		if errX != nil || errY != nil {
			return goban.Move{}, goban.Snapshot{}, errSyntax
		}
		return c.table.Play(ctx, goban.Pt(x, y))
	}
	return goban.Move{}, goban.Snapshot{}, errSyntax
}

func (c *Console) report(m goban.Move) {
	switch {
	case m.Pass:
		fmt.Fprintf(c.out, "%d. %s passes\n", m.Number, m.Color)
	case m.Suicide:
		fmt.Fprintf(c.out, "%d. %s at %s, own group removed\n", m.Number, m.Color, m.Point)
	case len(m.Captured) > 0:
		fmt.Fprintf(c.out, "%d. %s at %s captures %d\n", m.Number, m.Color, m.Point, len(m.Captured))
	default:
		fmt.Fprintf(c.out, "%d. %s at %s\n", m.Number, m.Color, m.Point)
	}
}

func (c *Console) show(snap goban.Snapshot) {
	fmt.Fprint(c.out, render.Text(snap))
	fmt.Fprintf(c.out, "prisoners: black %d, white %d\n", snap.Captures[goban.Black], snap.Captures[goban.White])
}

// isRejection reports whether err is the engine refusing a move, which only
// needs to be shown to the players.
func isRejection(err error) bool {
	return errors.Is(err, goban.ErrOutOfBounds) ||
		errors.Is(err, goban.ErrOccupied) ||
		errors.Is(err, goban.ErrSuicide) ||
		errors.Is(err, errs.ErrRejected)
}
