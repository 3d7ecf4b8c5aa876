package game

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	"goban/internal/httpresponse"
	"goban/internal/repository"
	gameuc "goban/internal/usecase/game"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	uc := gameuc.NewGameUseCase(repository.NewGameJournalMemory(), repository.NewGameArchiveMemory(), log,
		gameuc.Defaults{BoardSize: 9})
	r := chi.NewRouter()
	NewGameHandler(log, uc).Router(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do[T any](t *testing.T, method, url, body string, wantStatus int) T {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var envelope httpresponse.Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("%s %s: decode: %v", method, url, err)
	}
	if resp.StatusCode != wantStatus || envelope.Status != wantStatus {
		t.Fatalf("%s %s: status %d (body %d), want %d", method, url, resp.StatusCode, envelope.Status, wantStatus)
	}
	return envelope.Body
}

func createGame(t *testing.T, srv *httptest.Server, body string) game.GameResponse {
	t.Helper()
	return do[game.GameResponse](t, http.MethodPost, srv.URL+"/games", body, http.StatusCreated)
}

func TestPlayFlow(t *testing.T) {
	srv := newServer(t)
	created := createGame(t, srv, `{"board_size": 5}`)
	if created.Game.BoardSize != 5 || created.Snapshot.ToPlay != goban.Black {
		t.Fatalf("created = %+v", created)
	}
	base := srv.URL + "/games/" + created.Game.ID

	for _, body := range []string{`{"x":1,"y":0}`, `{"x":0,"y":0}`} {
		do[game.GameStateResponse](t, http.MethodPost, base+"/moves", body, http.StatusOK)
	}
	state := do[game.GameStateResponse](t, http.MethodPost, base+"/moves", `{"x":0,"y":1}`, http.StatusOK)
	if state.Move == nil || len(state.Move.Captured) != 1 || state.Snapshot.Captures[goban.Black] != 1 {
		t.Errorf("capture move = %+v", state)
	}

	state = do[game.GameStateResponse](t, http.MethodPost, base+"/pass", "", http.StatusOK)
	if !state.Move.Pass || state.Snapshot.ToPlay != goban.Black {
		t.Errorf("pass = %+v", state)
	}

	got := do[game.GameResponse](t, http.MethodGet, base, "", http.StatusOK)
	if got.Snapshot.MoveNumber != 4 || len(got.Game.Moves) != 4 {
		t.Errorf("game = %+v", got)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newServer(t)
	created := createGame(t, srv, "")
	base := srv.URL + "/games/" + created.Game.ID

	do[game.GameStateResponse](t, http.MethodPost, base+"/moves", `{"x":4,"y":4}`, http.StatusOK)
	do[httpresponse.ErrorResponse](t, http.MethodPost, base+"/moves", `{"x":4,"y":4}`, http.StatusConflict)
	do[httpresponse.ErrorResponse](t, http.MethodPost, base+"/moves", `{"x":9,"y":0}`, http.StatusBadRequest)
	malformed := do[httpresponse.ErrorResponse](t, http.MethodPost, base+"/moves", `{"x":1,"z":0}`, http.StatusBadRequest)
	if !strings.HasPrefix(malformed.ErrorDescription, httpresponse.MALFORMEDJSON_errorDesc) {
		t.Errorf("unknown field answered with %q", malformed.ErrorDescription)
	}
	do[httpresponse.ErrorResponse](t, http.MethodPost, srv.URL+"/games/missing/moves", `{"x":1,"y":1}`, http.StatusNotFound)
	do[httpresponse.ErrorResponse](t, http.MethodPost, srv.URL+"/games", `{"board_size": 40}`, http.StatusBadRequest)
	do[httpresponse.ErrorResponse](t, http.MethodPost, srv.URL+"/games", `{"suicide": "sometimes"}`, http.StatusBadRequest)
	do[httpresponse.ErrorResponse](t, http.MethodGet, srv.URL+"/archive?page=x", "", http.StatusBadRequest)

	do[game.Game](t, http.MethodPost, base+"/close", "", http.StatusOK)
	do[httpresponse.ErrorResponse](t, http.MethodPost, base+"/pass", "", http.StatusGone)
}

func TestArchiveAndDiagrams(t *testing.T) {
	srv := newServer(t)
	created := createGame(t, srv, `{"board_size": 9}`)
	base := srv.URL + "/games/" + created.Game.ID

	do[game.GameStateResponse](t, http.MethodPost, base+"/moves", `{"x":2,"y":3}`, http.StatusOK)
	closed := do[game.Game](t, http.MethodPost, base+"/close", "", http.StatusOK)
	if closed.Status != game.StatusClosed || len(closed.Moves) != 1 {
		t.Fatalf("closed = %+v", closed)
	}

	archive := do[game.ArchiveResponse](t, http.MethodGet, srv.URL+"/archive", "", http.StatusOK)
	if len(archive.Games) != 1 || archive.Games[0].ID != created.Game.ID {
		t.Errorf("archive = %+v", archive)
	}

	text := get(t, base+"/board.txt")
	if !strings.Contains(text, "d . . X . . . . . . \n") || !strings.HasSuffix(text, "white to play, move 1\n") {
		t.Errorf("board.txt =\n%s", text)
	}
	if pdf := get(t, base+"/board.pdf"); !strings.HasPrefix(pdf, "%PDF-") {
		t.Errorf("board.pdf starts with %q", pdf[:min(len(pdf), 16)])
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d: %s", url, resp.StatusCode, buf.String())
	}
	return buf.String()
}

// feedMessage decodes both kinds of websocket message.
type feedMessage struct {
	game.GameStateResponse
	Error string `json:"error"`
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) feedMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg feedMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestFeed(t *testing.T) {
	srv := newServer(t)
	created := createGame(t, srv, "")
	id := created.Game.ID

	player := dial(t, srv, id)
	watcher := dial(t, srv, id)
	for _, conn := range []*websocket.Conn{player, watcher} {
		if msg := read(t, conn); msg.Move != nil || msg.Snapshot.Size != 9 {
			t.Fatalf("initial message = %+v", msg)
		}
	}

	if err := player.WriteJSON(game.Command{Action: game.ActionPlay, X: 3, Y: 3}); err != nil {
		t.Fatal(err)
	}
	for _, conn := range []*websocket.Conn{player, watcher} {
		if msg := read(t, conn); msg.Move == nil || msg.Move.Point != goban.Pt(3, 3) {
			t.Errorf("update = %+v", msg)
		}
	}

	if err := player.WriteJSON(game.Command{Action: game.ActionPlay, X: 3, Y: 3}); err != nil {
		t.Fatal(err)
	}
	if msg := read(t, player); msg.Error == "" {
		t.Errorf("occupied point was not rejected: %+v", msg)
	}

	// moves made over HTTP reach the feed too; the rejection above did not
	do[game.GameStateResponse](t, http.MethodPost, srv.URL+"/games/"+id+"/pass", "", http.StatusOK)
	if msg := read(t, watcher); msg.Move == nil || !msg.Move.Pass || msg.Move.Number != 2 {
		t.Errorf("watcher got %+v, want the pass", msg)
	}
}
