package i

import (
	"context"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/google/uuid"
)

// CommandKind names a player intent.
type CommandKind string

const (
	CommandAppend   CommandKind = "append"
	CommandRetract  CommandKind = "retract"
	CommandTruncate CommandKind = "truncate"
	CommandErase    CommandKind = "erase"
	CommandReset    CommandKind = "reset"
	CommandReveal   CommandKind = "reveal"
)

// Command is a player intent aimed at one lattice node.
// Node is ignored by commands that do not take one.
type Command struct {
	Kind CommandKind
	Node maze.Node
}

// MoveOutcome is the result of a Command together with the resulting state.
type MoveOutcome struct {
	Accepted bool          `json:"accepted"`
	Solved   bool          `json:"solved"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// NewSessionRequest describes the maze to generate for a new session.
// A nil Seed asks for a random one.
type NewSessionRequest struct {
	Rows      int
	Cols      int
	Seed      *uint64
	Algorithm string
}

// GameSessionManager owns game sessions and applies player intents to them.
type GameSessionManager interface {
	NewSession(ctx context.Context, playerID uuid.UUID, req NewSessionRequest) (game.Snapshot, error)
	ImportSession(ctx context.Context, playerID uuid.UUID, raw []byte) (game.Snapshot, error)
	PlaySaved(ctx context.Context, playerID, mazeID uuid.UUID) (game.Snapshot, error)
	Snapshot(playerID, sessionID uuid.UUID) (game.Snapshot, error)
	Move(ctx context.Context, playerID, sessionID uuid.UUID, cmd Command) (MoveOutcome, error)
	Hint(playerID, sessionID uuid.UUID) ([]maze.Node, error)
	ExportMaze(playerID, sessionID uuid.UUID) ([]byte, error)
	SaveMaze(ctx context.Context, playerID, sessionID uuid.UUID) (uuid.UUID, error)
	DeleteSaved(ctx context.Context, playerID, mazeID uuid.UUID) error
	EndSession(playerID, sessionID uuid.UUID) error
	Leaderboard(ctx context.Context, rows, cols int, limit int64) ([]LeaderboardEntry, error)
}
