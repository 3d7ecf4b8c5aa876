package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	errs "goban/internal/errors"
	gameuc "goban/internal/usecase/game"
)

// GameRequest names a game; PlayRequest adds the point to play.
type GameRequest struct {
	GameID string `json:"game_id"`
}

type PlayRequest struct {
	GameID string `json:"game_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type Server struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
}

func NewServer(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *Server {
	return &Server{log: log, gameUC: gameUC}
}

func (s *Server) Create(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req game.CreateGameRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "create: %v", err)
	}
	created, snap, err := s.gameUC.CreateGame(ctx, req)
	if err != nil {
		return nil, s.statusOf(err)
	}
	return s.reply(game.GameResponse{Game: created, Snapshot: snap})
}

func (s *Server) Play(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req PlayRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "play: %v", err)
	}
	move, snap, err := s.gameUC.Play(ctx, req.GameID, goban.Pt(req.X, req.Y))
	if err != nil {
		return nil, s.statusOf(err)
	}
	return s.reply(game.GameStateResponse{GameID: req.GameID, Move: &move, Snapshot: snap})
}

func (s *Server) Pass(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GameRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "pass: %v", err)
	}
	move, snap, err := s.gameUC.Pass(ctx, req.GameID)
	if err != nil {
		return nil, s.statusOf(err)
	}
	return s.reply(game.GameStateResponse{GameID: req.GameID, Move: &move, Snapshot: snap})
}

func (s *Server) Get(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GameRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "get: %v", err)
	}
	record, snap, err := s.gameUC.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, s.statusOf(err)
	}
	return s.reply(game.GameResponse{Game: record, Snapshot: snap})
}

func (s *Server) reply(v any) (*structpb.Struct, error) {
	st, err := toStruct(v)
	if err != nil {
		s.log.Errorf("encode reply: %v", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return st, nil
}

func (s *Server) statusOf(err error) error {
	code := CodeOf(err)
	if code == codes.Internal {
		s.log.Errorf("rpc failed: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

// CodeOf maps engine and application errors to gRPC codes.
func CodeOf(err error) codes.Code {
	switch {
	case errors.Is(err, errs.ErrGameNotFound):
		return codes.NotFound
	case errors.Is(err, errs.ErrGameClosed),
		errors.Is(err, goban.ErrOccupied),
		errors.Is(err, goban.ErrSuicide):
		return codes.FailedPrecondition
	case errors.Is(err, errs.ErrBadRequest),
		errors.Is(err, goban.ErrOutOfBounds),
		errors.Is(err, goban.ErrBoardSize),
		errors.Is(err, goban.ErrSuicidePolicy):
		return codes.InvalidArgument
	case errors.Is(err, errs.ErrStorage):
		return codes.Unavailable
	}
	return codes.Internal
}

// UnaryLogger logs every call with its code and duration.
func UnaryLogger(log *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Infow("rpc", "method", info.FullMethod, "code", status.Code(err).String(), "took", fmt.Sprint(time.Since(start)))
		return resp, err
	}
}
