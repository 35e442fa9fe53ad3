package maze

import (
	"fmt"
	"strings"
)

// Classification is the state of one node of the expanded grid.
type Classification uint8

const (
	Wall  Classification = iota // impassable
	Empty                       // traversable and unclaimed
	Path                        // claimed by the current trace
	Start                       // the start cell
	Exit                        // the exit cell
)

func (c Classification) String() string {
	switch c {
	case Wall:
		return "wall"
	case Empty:
		return "empty"
	case Path:
		return "path"
	case Start:
		return "start"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("Classification(%d)", uint8(c))
	}
}

// MarshalText renders the classification by name.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (c *Classification) UnmarshalText(b []byte) error {
	for k := Wall; k <= Exit; k++ {
		if k.String() == string(b) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown classification %q", b)
}

// Node is a coordinate in the expanded grid. Cells sit at odd/odd
// coordinates; the nodes between them are walls or open connectors.
type Node struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// IsCell reports whether n is the lattice node of a maze cell.
func (n Node) IsCell() bool {
	return n.Row%2 == 1 && n.Col%2 == 1
}

// Cell returns the maze cell at n. It is only meaningful when IsCell is true.
func (n Node) Cell() CellPosition {
	return CellPosition{Row: (n.Row - 1) / 2, Col: (n.Col - 1) / 2}
}

// Adjacent reports whether n and o are horizontal or vertical neighbours.
func (n Node) Adjacent(o Node) bool {
	return abs(n.Row-o.Row)+abs(n.Col-o.Col) == 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Lattice is the expanded (2*rows+1) x (2*cols+1) grid of classifications,
// stored as a flat row-major slice.
type Lattice struct {
	rows  int
	cols  int
	nodes []Classification
}

// NewLattice returns a lattice of the given size with every node set to Wall.
func NewLattice(rows, cols int) *Lattice {
	return &Lattice{rows: rows, cols: cols, nodes: make([]Classification, rows*cols)}
}

// Rows returns the lattice height.
func (l *Lattice) Rows() int { return l.rows }

// Cols returns the lattice width.
func (l *Lattice) Cols() int { return l.cols }

// InBound reports whether n is inside the lattice.
func (l *Lattice) InBound(n Node) bool {
	return n.Row >= 0 && n.Row < l.rows && n.Col >= 0 && n.Col < l.cols
}

// At returns the classification of n.
func (l *Lattice) At(n Node) (Classification, error) {
	if !l.InBound(n) {
		return Wall, fmt.Errorf("%w: %v in %dx%d lattice", ErrOutOfBounds, n, l.rows, l.cols)
	}
	return l.nodes[n.Row*l.cols+n.Col], nil
}

// Set overwrites the classification of n.
func (l *Lattice) Set(n Node, c Classification) error {
	if !l.InBound(n) {
		return fmt.Errorf("%w: %v in %dx%d lattice", ErrOutOfBounds, n, l.rows, l.cols)
	}
	l.nodes[n.Row*l.cols+n.Col] = c
	return nil
}

// MustSet is Set for nodes the caller already knows to be in bounds.
// It panics otherwise.
func (l *Lattice) MustSet(n Node, c Classification) {
	if err := l.Set(n, c); err != nil {
		panic(err)
	}
}

// Clone returns an independent copy.
func (l *Lattice) Clone() *Lattice {
	return &Lattice{rows: l.rows, cols: l.cols, nodes: append([]Classification(nil), l.nodes...)}
}

// CopyFrom overwrites l with the contents of o, which must have the same size.
func (l *Lattice) CopyFrom(o *Lattice) {
	copy(l.nodes, o.nodes)
}

// Equal reports whether both lattices have the same size and classifications.
func (l *Lattice) Equal(o *Lattice) bool {
	if l.rows != o.rows || l.cols != o.cols {
		return false
	}
	for i := range l.nodes {
		if l.nodes[i] != o.nodes[i] {
			return false
		}
	}
	return true
}

// Grid returns the classifications as rows, for rendering.
func (l *Lattice) Grid() [][]Classification {
	grid := make([][]Classification, l.rows)
	for r := range grid {
		grid[r] = append([]Classification(nil), l.nodes[r*l.cols:(r+1)*l.cols]...)
	}
	return grid
}

var glyphs = map[Classification]byte{
	Wall:  '#',
	Empty: ' ',
	Path:  '.',
	Start: 'S',
	Exit:  'E',
}

// String draws the lattice one character per node.
func (l *Lattice) String() string {
	var b strings.Builder
	for r := 0; r < l.rows; r++ {
		for c := 0; c < l.cols; c++ {
			b.WriteByte(glyphs[l.nodes[r*l.cols+c]])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Expand projects the maze onto its expanded grid: cells and open connectors
// become Empty, everything else is Wall, and the start and exit cells are
// marked. The result is a fresh lattice owned by the caller.
func (m *Maze) Expand() *Lattice {
	l := NewLattice(2*m.rows+1, 2*m.cols+1)

	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			pos := CellPosition{Row: r, Col: c}
			node := pos.Node()
			l.nodes[node.Row*l.cols+node.Col] = Empty

			for _, d := range Directions {
				if m.grid[r][c].HasWall(d) {
					continue
				}
				delta := d.Delta()
				connector := Node{Row: node.Row + delta.Row, Col: node.Col + delta.Col}
				l.nodes[connector.Row*l.cols+connector.Col] = Empty
			}
		}
	}

	start, exit := m.start.Node(), m.exit.Node()
	l.nodes[start.Row*l.cols+start.Col] = Start
	l.nodes[exit.Row*l.cols+exit.Col] = Exit
	return l
}
