package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	errs "goban/internal/errors"
)

// Client calls goban.v1.Goban on a remote server.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Create(ctx context.Context, req game.CreateGameRequest) (game.GameResponse, error) {
	var resp game.GameResponse
	err := c.invoke(ctx, "Create", req, &resp)
	return resp, err
}

func (c *Client) Play(ctx context.Context, id string, p goban.Point) (game.GameStateResponse, error) {
	var resp game.GameStateResponse
	err := c.invoke(ctx, "Play", PlayRequest{GameID: id, X: p.X, Y: p.Y}, &resp)
	return resp, err
}

func (c *Client) Pass(ctx context.Context, id string) (game.GameStateResponse, error) {
	var resp game.GameStateResponse
	err := c.invoke(ctx, "Pass", GameRequest{GameID: id}, &resp)
	return resp, err
}

func (c *Client) Get(ctx context.Context, id string) (game.GameResponse, error) {
	var resp game.GameResponse
	err := c.invoke(ctx, "Get", GameRequest{GameID: id}, &resp)
	return resp, err
}

func (c *Client) invoke(ctx context.Context, name string, in, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(name), req, resp); err != nil {
		return remoteError(err)
	}
	return fromStruct(resp, out)
}

// remoteError keeps the status of err and adds the matching sentinel, so
// callers can use errors.Is as they would locally.
func remoteError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %w", errs.ErrGameNotFound, err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %w", errs.ErrRejected, err)
	case codes.Unavailable:
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return err
}
