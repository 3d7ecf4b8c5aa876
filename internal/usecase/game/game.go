package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	"goban/internal/domain/jitter"
	errs "goban/internal/errors"
)

// GameJournal holds live games and their move lists.
type GameJournal interface {
	PutGame(ctx context.Context, header game.Game) error
	GetGame(ctx context.Context, id string) (game.Game, error)
	AppendMove(ctx context.Context, id string, move goban.Move) error
	LoadMoves(ctx context.Context, id string) ([]goban.Move, error)
	DeleteGame(ctx context.Context, id string) error
}

// GameArchive holds closed games.
type GameArchive interface {
	SaveGame(ctx context.Context, record game.Game) error
	GetGame(ctx context.Context, id string) (game.Game, error)
	ListGames(ctx context.Context, page, limit int) ([]game.Game, error)
}

// Listener is told about every accepted move, whichever transport made it.
type Listener func(update game.GameStateResponse)

// Defaults are applied to create requests that leave fields empty.
type Defaults struct {
	BoardSize  int
	Rules      goban.Rules
	Jitter     bool
	JitterSeed int64
	PageLimit  int
}

type placer interface {
	PlayStone(p goban.Point) (goban.Move, error)
}

// session is the context object of one live game. Its mutex serializes
// every engine call, so the board is never seen half way through a move.
// A stale session has been dropped from the use case; holders waiting on
// its mutex must look the game up again.
type session struct {
	mu     sync.Mutex
	header game.Game
	board  *goban.Board
	placer placer
	moves  []goban.Move
	stale  bool
}

type GameUseCase struct {
	journal  GameJournal
	archive  GameArchive
	log      *zap.SugaredLogger
	defaults Defaults

	mu        sync.Mutex
	sessions  map[string]*session
	listeners []Listener

	now   func() time.Time
	newID func() string
}

func NewGameUseCase(journal GameJournal, archive GameArchive, log *zap.SugaredLogger, defaults Defaults) *GameUseCase {
	if defaults.BoardSize == 0 {
		defaults.BoardSize = goban.DefaultSize
	}
	if defaults.PageLimit <= 0 {
		defaults.PageLimit = 20
	}
	return &GameUseCase{
		journal:  journal,
		archive:  archive,
		log:      log,
		defaults: defaults,
		sessions: make(map[string]*session),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Subscribe registers l for move updates of all games.
func (g *GameUseCase) Subscribe(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// CreateGame starts a new game and records its header in the journal.
func (g *GameUseCase) CreateGame(ctx context.Context, req game.CreateGameRequest) (game.Game, goban.Snapshot, error) {
	header, err := g.newHeader(req)
	if err != nil {
		return game.Game{}, goban.Snapshot{}, err
	}
	s, err := g.openSession(header, nil)
	if err != nil {
		return game.Game{}, goban.Snapshot{}, err
	}
	if err := g.journal.PutGame(ctx, header); err != nil {
		return game.Game{}, goban.Snapshot{}, err
	}

	g.mu.Lock()
	g.sessions[header.ID] = s
	g.mu.Unlock()

	g.log.Infof("game %s created: %dx%d, suicide %s, jitter %t", header.ID, header.BoardSize, header.BoardSize, header.Rules.Suicide, header.Jitter)
	return header, s.board.Snapshot(), nil
}

// Play places a stone for whoever is to move in game id.
func (g *GameUseCase) Play(ctx context.Context, id string, p goban.Point) (goban.Move, goban.Snapshot, error) {
	return g.apply(ctx, id, func(s *session) (goban.Move, error) {
		return s.placer.PlayStone(p)
	})
}

// Pass hands the turn over in game id.
func (g *GameUseCase) Pass(ctx context.Context, id string) (goban.Move, goban.Snapshot, error) {
	return g.apply(ctx, id, func(s *session) (goban.Move, error) {
		return s.board.Pass(), nil
	})
}

// GetSnapshot returns the current position of a live game.
func (g *GameUseCase) GetSnapshot(ctx context.Context, id string) (goban.Snapshot, error) {
	s, err := g.lock(ctx, id)
	if err != nil {
		return goban.Snapshot{}, err
	}
	defer s.mu.Unlock()
	return s.board.Snapshot(), nil
}

// GetGame returns the record of a game, live or archived, with its current
// position.
func (g *GameUseCase) GetGame(ctx context.Context, id string) (game.Game, goban.Snapshot, error) {
	s, err := g.lock(ctx, id)
	if errors.Is(err, errs.ErrGameClosed) {
		return g.archived(ctx, id)
	}
	if err != nil {
		return game.Game{}, goban.Snapshot{}, err
	}
	defer s.mu.Unlock()
	return g.record(s), s.board.Snapshot(), nil
}

// CloseGame moves a live game to the archive.
func (g *GameUseCase) CloseGame(ctx context.Context, id string) (game.Game, error) {
	s, err := g.lock(ctx, id)
	if err != nil {
		return game.Game{}, err
	}
	defer s.mu.Unlock()

	record := g.record(s)
	closedAt := g.now().UTC()
	record.Status = game.StatusClosed
	record.ClosedAt = &closedAt

	if err := g.archive.SaveGame(ctx, record); err != nil {
		return game.Game{}, err
	}
	if err := g.journal.DeleteGame(ctx, id); err != nil {
		g.log.Warnw("archived game left in journal", "game", id, "error", err)
	}

	s.stale = true
	g.forget(id)
	g.log.Infof("game %s closed after %d moves", id, len(record.Moves))
	return record, nil
}

// ListArchive returns one page of closed games.
func (g *GameUseCase) ListArchive(ctx context.Context, page int) (game.ArchiveResponse, error) {
	if page < 0 {
		return game.ArchiveResponse{}, fmt.Errorf("%w: negative page %d", errs.ErrBadRequest, page)
	}
	games, err := g.archive.ListGames(ctx, page, g.defaults.PageLimit)
	if err != nil {
		return game.ArchiveResponse{}, err
	}
	return game.ArchiveResponse{Page: page, Limit: g.defaults.PageLimit, Games: games}, nil
}

func (g *GameUseCase) apply(ctx context.Context, id string, do func(*session) (goban.Move, error)) (goban.Move, goban.Snapshot, error) {
	s, err := g.lock(ctx, id)
	if err != nil {
		return goban.Move{}, goban.Snapshot{}, err
	}

	move, err := do(s)
	if err != nil {
		s.mu.Unlock()
		return goban.Move{}, goban.Snapshot{}, err
	}
	if err := g.journal.AppendMove(ctx, id, move); err != nil {
		// the board is ahead of the journal now; the next access rebuilds it
		s.stale = true
		g.forget(id)
		s.mu.Unlock()
		g.log.Errorf("game %s: move %d not journaled: %v", id, move.Number, err)
		return goban.Move{}, goban.Snapshot{}, err
	}
	s.moves = append(s.moves, move)
	snap := s.board.Snapshot()
	s.mu.Unlock()

	g.notify(game.GameStateResponse{GameID: id, Move: &move, Snapshot: snap})
	return move, snap, nil
}

// lock returns the session of id with its mutex held. A session that went
// stale while the caller waited for it is looked up again.
func (g *GameUseCase) lock(ctx context.Context, id string) (*session, error) {
	for {
		s, err := g.session(ctx, id)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if !s.stale {
			return s, nil
		}
		s.mu.Unlock()
	}
}

// session finds a live game in memory or rebuilds it from the journal.
func (g *GameUseCase) session(ctx context.Context, id string) (*session, error) {
	g.mu.Lock()
	s, ok := g.sessions[id]
	g.mu.Unlock()
	if ok {
		return s, nil
	}

	header, err := g.journal.GetGame(ctx, id)
	if errors.Is(err, errs.ErrGameNotFound) {
		if _, archErr := g.archive.GetGame(ctx, id); archErr == nil {
			return nil, errs.ErrGameClosed
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	moves, err := g.journal.LoadMoves(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err = g.openSession(header, moves)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.sessions[id]; ok {
		return existing, nil
	}
	g.sessions[id] = s
	g.log.Infof("game %s resumed from journal with %d moves", id, len(moves))
	return s, nil
}

func (g *GameUseCase) openSession(header game.Game, moves []goban.Move) (*session, error) {
	board, err := goban.New(header.BoardSize, header.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrBadRequest, err)
	}
	if err := board.Replay(moves); err != nil {
		return nil, fmt.Errorf("%w: game %s journal does not replay: %w", errs.ErrInternal, header.ID, err)
	}

	s := &session{header: header, board: board, placer: board, moves: moves}
	if header.Jitter {
		s.placer = jitter.New(board, rand.New(rand.NewSource(header.JitterSeed+int64(len(moves)))))
	}
	return s, nil
}

func (g *GameUseCase) newHeader(req game.CreateGameRequest) (game.Game, error) {
	header := game.Game{
		ID:         g.newID(),
		BoardSize:  req.BoardSize,
		Rules:      g.defaults.Rules,
		Jitter:     g.defaults.Jitter,
		JitterSeed: req.JitterSeed,
		Status:     game.StatusActive,
		CreatedAt:  g.now().UTC(),
	}
	if header.BoardSize == 0 {
		header.BoardSize = g.defaults.BoardSize
	}
	if req.Suicide != "" {
		policy, err := goban.ParseSuicidePolicy(req.Suicide)
		if err != nil {
			return game.Game{}, fmt.Errorf("%w: %w", errs.ErrBadRequest, err)
		}
		header.Rules.Suicide = policy
	}
	if req.Jitter != nil {
		header.Jitter = *req.Jitter
	}
	if header.JitterSeed == 0 {
		header.JitterSeed = g.defaults.JitterSeed
	}
	if header.JitterSeed == 0 {
		header.JitterSeed = g.now().UnixNano()
	}
	return header, nil
}

func (g *GameUseCase) archived(ctx context.Context, id string) (game.Game, goban.Snapshot, error) {
	record, err := g.archive.GetGame(ctx, id)
	if err != nil {
		return game.Game{}, goban.Snapshot{}, err
	}
	board, err := goban.New(record.BoardSize, record.Rules)
	if err != nil {
		return game.Game{}, goban.Snapshot{}, fmt.Errorf("%w: archived game %s: %w", errs.ErrInternal, id, err)
	}
	if err := board.Replay(record.Moves); err != nil {
		return game.Game{}, goban.Snapshot{}, fmt.Errorf("%w: archived game %s does not replay: %w", errs.ErrInternal, id, err)
	}
	return record, board.Snapshot(), nil
}

// record builds the full game record of s; s.mu must be held.
func (g *GameUseCase) record(s *session) game.Game {
	record := s.header
	record.Moves = append([]goban.Move(nil), s.moves...)
	record.CapturesBlack = s.board.Captures(goban.Black)
	record.CapturesWhite = s.board.Captures(goban.White)
	return record
}

func (g *GameUseCase) forget(id string) {
	g.mu.Lock()
	delete(g.sessions, id)
	g.mu.Unlock()
}

func (g *GameUseCase) notify(update game.GameStateResponse) {
	g.mu.Lock()
	listeners := append([]Listener(nil), g.listeners...)
	g.mu.Unlock()
	for _, l := range listeners {
		l(update)
	}
}
