package console

import (
	"context"
	"math/rand"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	"goban/internal/domain/jitter"
)

// Table is a game the console can drive.
type Table interface {
	Play(ctx context.Context, p goban.Point) (goban.Move, goban.Snapshot, error)
	Pass(ctx context.Context) (goban.Move, goban.Snapshot, error)
	Snapshot(ctx context.Context) (goban.Snapshot, error)
}

type placer interface {
	PlayStone(p goban.Point) (goban.Move, error)
}

// LocalTable plays on a board owned by this process.
type LocalTable struct {
	board  *goban.Board
	placer placer
}

// NewLocalTable wraps board. With a non-nil rng every placement is jittered.
func NewLocalTable(board *goban.Board, rng *rand.Rand) *LocalTable {
	t := &LocalTable{board: board, placer: board}
	if rng != nil {
		t.placer = jitter.New(board, rng)
	}
	return t
}

func (t *LocalTable) Play(_ context.Context, p goban.Point) (goban.Move, goban.Snapshot, error) {
	move, err := t.placer.PlayStone(p)
	if err != nil {
		return goban.Move{}, goban.Snapshot{}, err
	}
	return move, t.board.Snapshot(), nil
}

func (t *LocalTable) Pass(_ context.Context) (goban.Move, goban.Snapshot, error) {
	return t.board.Pass(), t.board.Snapshot(), nil
}

func (t *LocalTable) Snapshot(_ context.Context) (goban.Snapshot, error) {
	return t.board.Snapshot(), nil
}

// Remote is the part of the gRPC client a RemoteTable needs.
type Remote interface {
	Play(ctx context.Context, id string, p goban.Point) (game.GameStateResponse, error)
	Pass(ctx context.Context, id string) (game.GameStateResponse, error)
	Get(ctx context.Context, id string) (game.GameResponse, error)
}

// RemoteTable plays game id on a server.
type RemoteTable struct {
	remote Remote
	id     string
}

func NewRemoteTable(remote Remote, id string) *RemoteTable {
	return &RemoteTable{remote: remote, id: id}
}

func (t *RemoteTable) Play(ctx context.Context, p goban.Point) (goban.Move, goban.Snapshot, error) {
	return moveOf(t.remote.Play(ctx, t.id, p))
}

func (t *RemoteTable) Pass(ctx context.Context) (goban.Move, goban.Snapshot, error) {
	return moveOf(t.remote.Pass(ctx, t.id))
}

func (t *RemoteTable) Snapshot(ctx context.Context) (goban.Snapshot, error) {
	resp, err := t.remote.Get(ctx, t.id)
	return resp.Snapshot, err
}

func moveOf(resp game.GameStateResponse, err error) (goban.Move, goban.Snapshot, error) {
	if err != nil {
		return goban.Move{}, goban.Snapshot{}, err
	}
	var move goban.Move
	if resp.Move != nil {
		move = *resp.Move
	}
	return move, resp.Snapshot, nil
}
