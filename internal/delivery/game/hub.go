package game

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	errs "goban/internal/errors"
)

const (
	writeWait = 5 * time.Second
	// feedQueue is how many updates a watcher may fall behind before it is
	// dropped.
	feedQueue = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feed is one websocket connection watching a game. Messages are queued by
// push and written by writeLoop, so a slow client never blocks the sender.
type feed struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	out    chan any
	closed bool
}

func newFeed(conn *websocket.Conn) *feed {
	return &feed{conn: conn, out: make(chan any, feedQueue)}
}

// push queues v without blocking. It reports false when the queue is full
// or the feed is closed.
func (f *feed) push(v any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	select {
	case f.out <- v:
		return true
	default:
		return false
	}
}

func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.out)
	}
}

// writeLoop writes queued messages until the feed is closed. After a failed
// write the connection is closed and the rest of the queue is discarded.
func (f *feed) writeLoop(log *zap.SugaredLogger, id string) {
	broken := false
	for v := range f.out {
		if broken {
			continue
		}
		_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := f.conn.WriteJSON(v); err != nil {
			log.Warnw("websocket write failed", "game", id, "error", err)
			broken = true
			_ = f.conn.Close()
		}
	}
}

// Hub fans accepted moves out to every connection watching the same game.
type Hub struct {
	log   *zap.SugaredLogger
	mu    sync.RWMutex
	feeds map[string]map[*feed]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{log: log, feeds: make(map[string]map[*feed]struct{})}
}

func (h *Hub) join(id string, f *feed) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.feeds[id] == nil {
		h.feeds[id] = make(map[*feed]struct{})
	}
	h.feeds[id][f] = struct{}{}
}

func (h *Hub) leave(id string, f *feed) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.feeds[id], f)
	if len(h.feeds[id]) == 0 {
		delete(h.feeds, id)
	}
}

// Watchers is the number of open connections on game id.
func (h *Hub) Watchers(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.feeds[id])
}

// Broadcast queues update for every watcher of its game. Watchers whose
// queue is full are dropped.
func (h *Hub) Broadcast(update game.GameStateResponse) {
	h.mu.RLock()
	feeds := make([]*feed, 0, len(h.feeds[update.GameID]))
	for f := range h.feeds[update.GameID] {
		feeds = append(feeds, f)
	}
	h.mu.RUnlock()

	for _, f := range feeds {
		if !f.push(update) {
			h.log.Warnw("dropping websocket watcher", "game", update.GameID)
			h.leave(update.GameID, f)
			_ = f.conn.Close()
		}
	}
}

// HandleFeed upgrades to a websocket that first receives the current
// position, then every accepted move. Commands sent on it are played as if
// they came from the HTTP API; a rejected command is answered to its sender
// only.
func (g *GameHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := g.gameUC.GetSnapshot(r.Context(), id); err != nil {
		g.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Errorf("websocket upgrade for game %s: %v", id, err)
		return
	}
	f := newFeed(conn)
	written := make(chan struct{})
	go func() {
		defer close(written)
		f.writeLoop(g.log, id)
	}()
	defer func() {
		g.hub.leave(id, f)
		f.close()
		<-written
		_ = conn.Close()
	}()

	if err := g.watch(r.Context(), id, f); err != nil {
		return
	}
	g.log.Infof("game %s: websocket joined, %d watching", id, g.hub.Watchers(id))

	ctx := context.WithoutCancel(r.Context())
	for {
		var cmd game.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Warnf("websocket read for game %s: %v", id, err)
			}
			return
		}

		switch cmd.Action {
		case game.ActionPlay:
			_, _, err = g.gameUC.Play(ctx, id, goban.Pt(cmd.X, cmd.Y))
		case game.ActionPass:
			_, _, err = g.gameUC.Pass(ctx, id)
		default:
			err = fmt.Errorf("%w: unknown action %q", errs.ErrBadRequest, cmd.Action)
		}
		if err != nil && !f.push(game.FeedError{Error: err.Error()}) {
			return
		}
	}
}

// watch joins f to the hub and queues the current position ahead of every
// update broadcast after the join. An update for a move the position
// already shows may follow it; clients skip updates whose move number is
// not newer.
func (g *GameHandler) watch(ctx context.Context, id string, f *feed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.hub.join(id, f)
	snap, err := g.gameUC.GetSnapshot(ctx, id)
	if err != nil {
		f.out <- game.FeedError{Error: err.Error()}
		return err
	}
	f.out <- game.GameStateResponse{GameID: id, Snapshot: snap}
	return nil
}
