package repository

import (
	"context"
	"slices"
	"sync"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	errs "goban/internal/errors"
)

// GameJournalMemory is the in-process journal used when no redis is configured.
type GameJournalMemory struct {
	mu    sync.RWMutex
	games map[string]game.Game
	moves map[string][]goban.Move
}

func NewGameJournalMemory() *GameJournalMemory {
	return &GameJournalMemory{
		games: make(map[string]game.Game),
		moves: make(map[string][]goban.Move),
	}
}

func (m *GameJournalMemory) PutGame(_ context.Context, header game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	header.Moves = nil
	m.games[header.ID] = header
	return nil
}

func (m *GameJournalMemory) GetGame(_ context.Context, id string) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	header, ok := m.games[id]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	return header, nil
}

func (m *GameJournalMemory) AppendMove(_ context.Context, id string, move goban.Move) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return errs.ErrGameNotFound
	}
	m.moves[id] = append(m.moves[id], move)
	return nil
}

func (m *GameJournalMemory) LoadMoves(_ context.Context, id string) ([]goban.Move, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.moves[id]), nil
}

func (m *GameJournalMemory) DeleteGame(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	delete(m.moves, id)
	return nil
}

// GameArchiveMemory is the in-process archive used when no mongo is configured.
type GameArchiveMemory struct {
	mu    sync.RWMutex
	games []game.Game
}

func NewGameArchiveMemory() *GameArchiveMemory {
	return &GameArchiveMemory{}
}

func (m *GameArchiveMemory) SaveGame(_ context.Context, record game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.games {
		if m.games[i].ID == record.ID {
			m.games[i] = record
			return nil
		}
	}
	m.games = append(m.games, record)
	return nil
}

func (m *GameArchiveMemory) GetGame(_ context.Context, id string) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.games {
		if record.ID == id {
			return record, nil
		}
	}
	return game.Game{}, errs.ErrGameNotFound
}

// ListGames pages through games in reverse archive order, without moves.
func (m *GameArchiveMemory) ListGames(_ context.Context, page, limit int) ([]game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]game.Game, 0, limit)
	skip := page * limit
	for i := len(m.games) - 1; i >= 0 && len(result) < limit; i-- {
		if skip > 0 {
			skip--
			continue
		}
		record := m.games[i]
		record.Moves = nil
		result = append(result, record)
	}
	return result, nil
}
