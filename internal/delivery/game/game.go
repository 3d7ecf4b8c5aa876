package game

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	errs "goban/internal/errors"
	"goban/internal/httpresponse"
	"goban/internal/render"
	gameuc "goban/internal/usecase/game"
	"goban/internal/utils"
)

type GameHandler struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
	hub    *Hub
}

// NewGameHandler builds the HTTP handlers and subscribes their websocket hub
// to every move the use case accepts.
func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	hub := NewHub(log)
	gameUC.Subscribe(hub.Broadcast)
	return &GameHandler{
		log:    log,
		gameUC: gameUC,
		hub:    hub,
	}
}

func (g *GameHandler) Router(r chi.Router) {
	r.Post("/games", g.HandleNewGame)
	r.Get("/games/{id}", g.HandleGetGame)
	r.Post("/games/{id}/moves", g.HandlePlay)
	r.Post("/games/{id}/pass", g.HandlePass)
	r.Post("/games/{id}/close", g.HandleClose)
	r.Get("/games/{id}/board.txt", g.HandleBoardText)
	r.Get("/games/{id}/board.pdf", g.HandleBoardPDF)
	r.Get("/games/{id}/ws", g.HandleFeed)
	r.Get("/archive", g.HandleArchive)
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Warnf("new game: %v", err)
		httpresponse.WriteMalformedJSON(w, err)
		return
	}

	created, snap, err := g.gameUC.CreateGame(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, game.GameResponse{Game: created, Snapshot: snap})
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	record, snap, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameResponse{Game: record, Snapshot: snap})
}

func (g *GameHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	var req game.MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteMalformedJSON(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	move, snap, err := g.gameUC.Play(r.Context(), id, goban.Pt(req.X, req.Y))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameStateResponse{GameID: id, Move: &move, Snapshot: snap})
}

func (g *GameHandler) HandlePass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	move, snap, err := g.gameUC.Pass(r.Context(), id)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameStateResponse{GameID: id, Move: &move, Snapshot: snap})
}

func (g *GameHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	record, err := g.gameUC.CloseGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, record)
}

func (g *GameHandler) HandleBoardText(w http.ResponseWriter, r *http.Request) {
	_, snap, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "%s%s to play, move %d\n", render.Text(snap), snap.ToPlay, snap.MoveNumber)
}

func (g *GameHandler) HandleBoardPDF(w http.ResponseWriter, r *http.Request) {
	record, snap, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := render.PDF(&buf, snap, "game "+record.ID); err != nil {
		g.log.Errorf("render pdf for game %s: %v", record.ID, err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(buf.Bytes())
}

func (g *GameHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		var err error
		if page, err = strconv.Atoi(raw); err != nil {
			httpresponse.WriteError(w, http.StatusBadRequest, "page must be a number")
			return
		}
	}
	archive, err := g.gameUC.ListArchive(r.Context(), page)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, archive)
}

func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		g.log.Errorf("request failed: %v", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteError(w, status, err.Error())
}

// StatusOf maps engine and application errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrGameClosed):
		return http.StatusGone
	case errors.Is(err, goban.ErrOccupied), errors.Is(err, goban.ErrSuicide):
		return http.StatusConflict
	case errors.Is(err, errs.ErrBadRequest),
		errors.Is(err, goban.ErrOutOfBounds),
		errors.Is(err, goban.ErrBoardSize),
		errors.Is(err, goban.ErrSuicidePolicy):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
