package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	errs "goban/internal/errors"
)

const (
	gamesCollection = "games"
	mongoTimeout    = 5 * time.Second
)

// GameArchiveMongo stores closed games, moves included, one document each.
type GameArchiveMongo struct {
	log   *zap.SugaredLogger
	mongo *mongo.Database
}

func NewGameArchiveMongo(log *zap.SugaredLogger, mongo *mongo.Database) *GameArchiveMongo {
	return &GameArchiveMongo{
		log:   log,
		mongo: mongo,
	}
}

func (g *GameArchiveMongo) SaveGame(ctx context.Context, record game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)
	filter := bson.M{"_id": record.ID}
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, filter, record, opts); err != nil {
		g.log.Errorf("failed to archive game %s: %v", record.ID, err)
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}

	g.log.Infof("game %s archived with %d moves", record.ID, len(record.Moves))
	return nil
}

func (g *GameArchiveMongo) GetGame(ctx context.Context, id string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	var record game.Game
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errs.ErrGameNotFound
	}
	if err != nil {
		g.log.Error(err)
		return game.Game{}, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return record, nil
}

// ListGames returns a page of archived games, most recently closed first.
func (g *GameArchiveMongo) ListGames(ctx context.Context, page, limit int) ([]game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "closed_at", Value: -1}}).
		SetSkip(int64(page * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"moves": 0})

	cursor, err := collection.Find(ctx, bson.M{"status": game.StatusClosed}, opts)
	if err != nil {
		g.log.Error(err)
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	result := make([]game.Game, 0, limit)
	for cursor.Next(ctx) {
		var record game.Game
		if err := cursor.Decode(&record); err != nil {
			g.log.Error(err)
			return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
		}
		result = append(result, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return result, nil
}
