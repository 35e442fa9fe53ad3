/*
Package maze provides tools for creating and querying rectangular perfect mazes.

A Maze is a grid of Cell values whose wall flags form a spanning tree of the
grid: every pair of cells is joined by exactly one simple path. Mazes are
built by Generate (Wilson's algorithm or a randomized backtracker) or loaded
through New, which rejects grids that break the perfect-maze invariants.

Once built a Maze never changes, so it can be shared between a tracer and the
solver without locking. Expand projects it onto the lattice used for path
tracing, and Solve returns the unique route from start to exit.
*/
package maze

import (
	"fmt"
	"strings"
)

// Maze represents an immutable rectangular perfect maze with a start and an exit cell.
type Maze struct {
	rows  int      // number of rows
	cols  int      // number of columns
	grid  [][]Cell // grid[row][col]
	start CellPosition
	exit  CellPosition
}

// New builds a Maze from a deserialized grid and validates it.
// The grid is copied; later changes to it do not affect the Maze.
// Any violation of the perfect-maze invariants yields an error wrapping ErrCorruptMaze.
func New(grid [][]Cell, start, exit CellPosition) (*Maze, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrCorruptMaze)
	}

	rows, cols := len(grid), len(grid[0])
	copied := make([][]Cell, rows)
	for r, row := range grid {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrCorruptMaze, r, len(row), cols)
		}
		copied[r] = append([]Cell(nil), row...)
	}

	m := &Maze{rows: rows, cols: cols, grid: copied, start: start, exit: exit}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Maze) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Maze) Cols() int { return m.cols }

// StartCell returns the designated start cell.
func (m *Maze) StartCell() CellPosition { return m.start }

// ExitCell returns the designated exit cell.
func (m *Maze) ExitCell() CellPosition { return m.exit }

// InBound reports whether pos lies inside the grid.
func (m *Maze) InBound(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < m.rows && pos.Col >= 0 && pos.Col < m.cols
}

// Cell returns a copy of the cell at pos.
func (m *Maze) Cell(pos CellPosition) (Cell, bool) {
	if !m.InBound(pos) {
		return Cell{}, false
	}
	return m.grid[pos.Row][pos.Col], true
}

// Grid returns a copy of the wall grid, indexed [row][col].
func (m *Maze) Grid() [][]Cell {
	grid := make([][]Cell, m.rows)
	for r := range m.grid {
		grid[r] = append([]Cell(nil), m.grid[r]...)
	}
	return grid
}

// IsOpen reports whether a and b are adjacent cells with no wall between them.
func (m *Maze) IsOpen(a, b CellPosition) bool {
	if !m.InBound(a) || !m.InBound(b) {
		return false
	}
	d, ok := a.directionTo(b)
	if !ok {
		return false
	}
	return !m.grid[a.Row][a.Col].HasWall(d) && !m.grid[b.Row][b.Col].HasWall(d.Opposite())
}

// OpenNeighbors returns the cells reachable from pos in one step, in Directions order.
func (m *Maze) OpenNeighbors(pos CellPosition) []CellPosition {
	var result []CellPosition
	for _, d := range Directions {
		next := pos.Step(d)
		if m.IsOpen(pos, next) {
			result = append(result, next)
		}
	}
	return result
}

// PassageCount returns the number of open passages between adjacent cells.
func (m *Maze) PassageCount() int {
	count := 0
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			pos := CellPosition{Row: r, Col: c}
			if m.IsOpen(pos, pos.Step(East)) {
				count++
			}
			if m.IsOpen(pos, pos.Step(South)) {
				count++
			}
		}
	}
	return count
}

// validate checks the invariants a loaded grid must satisfy.
func (m *Maze) validate() error {
	if !validDimension(m.rows) || !validDimension(m.cols) {
		return fmt.Errorf("%w: %dx%d outside [%d, %d]", ErrCorruptMaze, m.rows, m.cols, MinDimension, MaxDimension)
	}
	if !m.InBound(m.start) || !m.InBound(m.exit) {
		return fmt.Errorf("%w: start %v or exit %v out of bounds", ErrCorruptMaze, m.start, m.exit)
	}
	if m.start == m.exit {
		return fmt.Errorf("%w: start and exit are the same cell", ErrCorruptMaze)
	}

	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			pos := CellPosition{Row: r, Col: c}
			cell := m.grid[r][c]
			for _, d := range Directions {
				next := pos.Step(d)
				if !m.InBound(next) {
					if !cell.HasWall(d) {
						return fmt.Errorf("%w: cell %v is open to the outside on %s", ErrCorruptMaze, pos, d)
					}
					continue
				}
				if cell.HasWall(d) != m.grid[next.Row][next.Col].HasWall(d.Opposite()) {
					return fmt.Errorf("%w: walls between %v and %v disagree", ErrCorruptMaze, pos, next)
				}
			}
		}
	}

	if got, want := m.PassageCount(), m.rows*m.cols-1; got != want {
		return fmt.Errorf("%w: %d open passages, want %d", ErrCorruptMaze, got, want)
	}
	if reached := len(m.distances(m.start)); reached != m.rows*m.cols {
		return fmt.Errorf("%w: only %d of %d cells reachable from start", ErrCorruptMaze, reached, m.rows*m.cols)
	}
	return nil
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	var output strings.Builder

	// Top boundary
	output.WriteString("+" + strings.Repeat("---+", m.cols) + "\n")

	for row := 0; row < m.rows; row++ {
		cellRow := "|"
		for col := 0; col < m.cols; col++ {
			pos := CellPosition{Row: row, Col: col}
			switch pos {
			case m.start:
				cellRow += " S "
			case m.exit:
				cellRow += " E "
			default:
				cellRow += "   "
			}

			if m.grid[row][col].EastWall {
				cellRow += "|"
			} else {
				cellRow += " "
			}
		}
		output.WriteString(cellRow + "\n")

		wallRow := "+"
		for col := 0; col < m.cols; col++ {
			if m.grid[row][col].SouthWall {
				wallRow += "---+"
			} else {
				wallRow += "   +"
			}
		}
		output.WriteString(wallRow + "\n")
	}

	return output.String()
}
