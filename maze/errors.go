package maze

import "errors"

const (
	MinDimension = 5
	MaxDimension = 20
)

var (
	// ErrInvalidSize is returned when a side length is outside [MinDimension, MaxDimension].
	ErrInvalidSize = errors.New("invalid maze dimensions")
	// ErrCorruptMaze is returned when a loaded grid is not a perfect maze.
	ErrCorruptMaze = errors.New("corrupt maze")
	// ErrOutOfBounds is returned when a lattice node lies outside the expanded grid.
	ErrOutOfBounds = errors.New("node out of bounds")
)

func validDimension(n int) bool {
	return n >= MinDimension && n <= MaxDimension
}
