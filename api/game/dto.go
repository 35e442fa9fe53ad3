// Package gameapi exposes game sessions over REST and websocket.
package gameapi

import (
	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
)

// NewGameRequest describes the maze to generate. Zero sizes use the server default.
type NewGameRequest struct {
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	Seed      *uint64 `json:"seed"`
	Algorithm string  `json:"algorithm"`
}

// NodeRequest addresses one lattice node.
type NodeRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

func (r NodeRequest) node() maze.Node {
	return maze.Node{Row: *r.Row, Col: *r.Col}
}

// HintResponse lists the solver route on the lattice, endpoints excluded.
type HintResponse struct {
	Nodes []maze.Node `json:"nodes"`
}

// SaveResponse carries the id a maze was saved under.
type SaveResponse struct {
	MazeID string `json:"maze_id"`
}

// LeaderboardResponse lists the fastest solves on one maze size.
type LeaderboardResponse struct {
	Rows    int                  `json:"rows"`
	Cols    int                  `json:"cols"`
	Entries []i.LeaderboardEntry `json:"entries"`
}

// Frame answers one websocket command.
type Frame struct {
	Command  string         `json:"command"`
	Accepted bool           `json:"accepted"`
	Solved   bool           `json:"solved"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Hint     []maze.Node    `json:"hint,omitempty"`
	Error    string         `json:"error,omitempty"`
}
