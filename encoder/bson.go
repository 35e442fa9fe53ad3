// Package encoder converts mazes to and from their persisted BSON form.
//
// The same document shape is written to the maze repository and exchanged
// with clients through the import and export endpoints. Decoding always
// goes through maze.New, so a document that is not a perfect maze is
// rejected with maze.ErrCorruptMaze.
package encoder

import (
	"fmt"

	"github.com/beka-birhanu/vinom-maze/maze"
	"go.mongodb.org/mongo-driver/bson"
)

// formatVersion is bumped whenever MazeDocument changes incompatibly.
const formatVersion = 1

// CellDocument is the stored form of one cell's walls.
type CellDocument struct {
	North bool `bson:"n" json:"north"`
	South bool `bson:"s" json:"south"`
	East  bool `bson:"e" json:"east"`
	West  bool `bson:"w" json:"west"`
}

// PositionDocument is the stored form of a cell position.
type PositionDocument struct {
	Row int `bson:"row" json:"row"`
	Col int `bson:"col" json:"col"`
}

// MazeDocument is the persisted representation of a maze.
type MazeDocument struct {
	Version int              `bson:"version" json:"version"`
	Rows    int              `bson:"rows" json:"rows"`
	Cols    int              `bson:"cols" json:"cols"`
	Cells   [][]CellDocument `bson:"cells" json:"cells"`
	Start   PositionDocument `bson:"start" json:"start"`
	Exit    PositionDocument `bson:"exit" json:"exit"`
}

// ToDocument converts m into its stored form.
func ToDocument(m *maze.Maze) MazeDocument {
	grid := m.Grid()
	cells := make([][]CellDocument, len(grid))
	for r, row := range grid {
		cells[r] = make([]CellDocument, len(row))
		for c, cell := range row {
			cells[r][c] = CellDocument{
				North: cell.NorthWall,
				South: cell.SouthWall,
				East:  cell.EastWall,
				West:  cell.WestWall,
			}
		}
	}

	return MazeDocument{
		Version: formatVersion,
		Rows:    m.Rows(),
		Cols:    m.Cols(),
		Cells:   cells,
		Start:   PositionDocument{Row: m.StartCell().Row, Col: m.StartCell().Col},
		Exit:    PositionDocument{Row: m.ExitCell().Row, Col: m.ExitCell().Col},
	}
}

// FromDocument rebuilds and validates a maze from its stored form.
func FromDocument(doc MazeDocument) (*maze.Maze, error) {
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", maze.ErrCorruptMaze, doc.Version)
	}
	if doc.Rows != len(doc.Cells) {
		return nil, fmt.Errorf("%w: header says %d rows, found %d", maze.ErrCorruptMaze, doc.Rows, len(doc.Cells))
	}

	grid := make([][]maze.Cell, len(doc.Cells))
	for r, row := range doc.Cells {
		if len(row) != doc.Cols {
			return nil, fmt.Errorf("%w: header says %d columns, row %d has %d", maze.ErrCorruptMaze, doc.Cols, r, len(row))
		}
		grid[r] = make([]maze.Cell, len(row))
		for c, cell := range row {
			grid[r][c] = maze.Cell{
				NorthWall: cell.North,
				SouthWall: cell.South,
				EastWall:  cell.East,
				WestWall:  cell.West,
			}
		}
	}

	return maze.New(
		grid,
		maze.CellPosition{Row: doc.Start.Row, Col: doc.Start.Col},
		maze.CellPosition{Row: doc.Exit.Row, Col: doc.Exit.Col},
	)
}

// Marshal encodes m as a BSON document.
func Marshal(m *maze.Maze) ([]byte, error) {
	return bson.Marshal(ToDocument(m))
}

// Unmarshal decodes a BSON document produced by Marshal.
func Unmarshal(b []byte) (*maze.Maze, error) {
	var doc MazeDocument
	if err := bson.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", maze.ErrCorruptMaze, err)
	}
	return FromDocument(doc)
}
