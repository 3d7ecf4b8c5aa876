package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	errs "goban/internal/errors"
)

const redisTimeout = 5 * time.Second

// GameJournalRedis keeps live games in redis: the header as a JSON string
// and the moves as a list of JSON entries, appended one per move.
type GameJournalRedis struct {
	log   *zap.SugaredLogger
	redis *redis.Client
}

func NewGameJournalRedis(log *zap.SugaredLogger, redis *redis.Client) *GameJournalRedis {
	return &GameJournalRedis{
		log:   log,
		redis: redis,
	}
}

func gameKey(id string) string {
	return "goban:game:" + id
}

func movesKey(id string) string {
	return "goban:moves:" + id
}

func (g *GameJournalRedis) PutGame(ctx context.Context, header game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	header.Moves = nil
	raw, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("%w: encode game %s: %w", errs.ErrStorage, header.ID, err)
	}
	if err := g.redis.Set(ctx, gameKey(header.ID), raw, 0).Err(); err != nil {
		g.log.Errorf("failed to store game %s: %v", header.ID, err)
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return nil
}

func (g *GameJournalRedis) GetGame(ctx context.Context, id string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	raw, err := g.redis.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Game{}, errs.ErrGameNotFound
	}
	if err != nil {
		g.log.Errorf("failed to load game %s: %v", id, err)
		return game.Game{}, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}

	var header game.Game
	if err := json.Unmarshal(raw, &header); err != nil {
		return game.Game{}, fmt.Errorf("%w: decode game %s: %w", errs.ErrStorage, id, err)
	}
	return header, nil
}

func (g *GameJournalRedis) AppendMove(ctx context.Context, id string, move goban.Move) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	exists, err := g.redis.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	if exists == 0 {
		return errs.ErrGameNotFound
	}

	raw, err := json.Marshal(move)
	if err != nil {
		return fmt.Errorf("%w: encode move: %w", errs.ErrStorage, err)
	}
	if err := g.redis.RPush(ctx, movesKey(id), raw).Err(); err != nil {
		g.log.Errorf("failed to append move %d to game %s: %v", move.Number, id, err)
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return nil
}

func (g *GameJournalRedis) LoadMoves(ctx context.Context, id string) ([]goban.Move, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	entries, err := g.redis.LRange(ctx, movesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return decodeMoves(entries)
}

func (g *GameJournalRedis) DeleteGame(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := g.redis.Del(ctx, gameKey(id), movesKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return nil
}

func decodeMoves(entries []string) ([]goban.Move, error) {
	moves := make([]goban.Move, 0, len(entries))
	for i, entry := range entries {
		var m goban.Move
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			return nil, fmt.Errorf("%w: decode move %d: %w", errs.ErrStorage, i+1, err)
		}
		moves = append(moves, m)
	}
	return moves, nil
}
