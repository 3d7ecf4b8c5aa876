package game

import (
	"time"

	"goban/internal/domain/goban"
)

const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Game is the stored header of one board session. Moves are only filled in
// for archived games; live games keep them in the journal.
type Game struct {
	ID            string       `json:"id" bson:"_id"`
	BoardSize     int          `json:"board_size" bson:"board_size"`
	Rules         goban.Rules  `json:"rules" bson:"rules"`
	Jitter        bool         `json:"jitter" bson:"jitter"`
	JitterSeed    int64        `json:"jitter_seed,omitempty" bson:"jitter_seed"`
	Status        string       `json:"status" bson:"status"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	ClosedAt      *time.Time   `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
	Moves         []goban.Move `json:"moves,omitempty" bson:"moves,omitempty"`
	CapturesBlack int          `json:"captures_black" bson:"captures_black"`
	CapturesWhite int          `json:"captures_white" bson:"captures_white"`
}

type CreateGameRequest struct {
	BoardSize  int    `json:"board_size"`
	Suicide    string `json:"suicide"`
	Jitter     *bool  `json:"jitter"`
	JitterSeed int64  `json:"jitter_seed"`
}

type MoveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameResponse is a game record with its current position.
type GameResponse struct {
	Game     Game           `json:"game"`
	Snapshot goban.Snapshot `json:"snapshot"`
}

// GameStateResponse is sent after every accepted move and on reads.
type GameStateResponse struct {
	GameID   string         `json:"game_id"`
	Move     *goban.Move    `json:"move,omitempty"`
	Snapshot goban.Snapshot `json:"snapshot"`
}

type ArchiveResponse struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Games []Game `json:"games"`
}

// Command is a websocket message from a client.
type Command struct {
	Action string `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

const (
	ActionPlay = "play"
	ActionPass = "pass"
)

// FeedError is sent back to the websocket client whose command failed.
type FeedError struct {
	Error string `json:"error"`
}
