package i

import (
	"context"
	"errors"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/google/uuid"
)

// ErrMazeNotFound is returned by MazeRepo.ByID when nothing is stored under the id.
var ErrMazeNotFound = errors.New("maze not found")

// MazeRepo defines the interface for maze persistence operations.
type MazeRepo interface {
	// Save inserts or replaces the maze stored under id on behalf of owner.
	Save(ctx context.Context, id, owner uuid.UUID, m *maze.Maze) error

	// ByID retrieves and validates a stored maze.
	// Returns ErrMazeNotFound if no maze is stored under id and an error
	// wrapping maze.ErrCorruptMaze if the stored document is invalid.
	ByID(ctx context.Context, id uuid.UUID) (*maze.Maze, error)

	// Delete removes the maze stored under id if owner saved it.
	// Returns ErrMazeNotFound if owner has no maze under id.
	Delete(ctx context.Context, id, owner uuid.UUID) error
}
