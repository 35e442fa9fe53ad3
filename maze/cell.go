package maze

// Direction names one side of a cell.
type Direction string

const (
	North Direction = "North"
	South Direction = "South"
	East  Direction = "East"
	West  Direction = "West"
)

// Directions lists every side in a fixed order. Generation iterates this
// slice rather than a map so that a seed always yields the same maze.
var Directions = []Direction{North, South, East, West}

var deltas = map[Direction]CellPosition{
	North: {Row: -1, Col: 0},
	South: {Row: 1, Col: 0},
	East:  {Row: 0, Col: 1},
	West:  {Row: 0, Col: -1},
}

// Delta returns the row/column offset of a step in direction d.
func (d Direction) Delta() CellPosition {
	return deltas[d]
}

// Opposite returns the side facing d.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// Cell represents a single cell in a maze grid.
// A wall flag set to true means there is no passage on that side.
type Cell struct {
	NorthWall bool `json:"north"` // NorthWall indicates whether there is a wall on the north side of the cell.
	SouthWall bool `json:"south"` // SouthWall indicates whether there is a wall on the south side of the cell.
	EastWall  bool `json:"east"`  // EastWall indicates whether there is a wall on the east side of the cell.
	WestWall  bool `json:"west"`  // WestWall indicates whether there is a wall on the west side of the cell.
}

// closedCell returns a cell with all four walls up.
func closedCell() Cell {
	return Cell{NorthWall: true, SouthWall: true, EastWall: true, WestWall: true}
}

// HasWall reports whether the cell has a wall on side d.
func (c Cell) HasWall(d Direction) bool {
	switch d {
	case North:
		return c.NorthWall
	case South:
		return c.SouthWall
	case East:
		return c.EastWall
	case West:
		return c.WestWall
	default:
		return true
	}
}

// setWall sets the wall flag on side d.
func (c *Cell) setWall(d Direction, hasWall bool) {
	switch d {
	case North:
		c.NorthWall = hasWall
	case South:
		c.SouthWall = hasWall
	case East:
		c.EastWall = hasWall
	case West:
		c.WestWall = hasWall
	}
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	Row int `json:"row"` // Row index of the cell
	Col int `json:"col"` // Column index of the cell
}

// Step returns the position one cell away in direction d.
func (p CellPosition) Step(d Direction) CellPosition {
	delta := d.Delta()
	return CellPosition{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}

// Node returns the lattice node a cell occupies in the expanded grid.
func (p CellPosition) Node() Node {
	return Node{Row: 2*p.Row + 1, Col: 2*p.Col + 1}
}

// directionTo returns the direction of a neighbouring position q.
func (p CellPosition) directionTo(q CellPosition) (Direction, bool) {
	for _, d := range Directions {
		if p.Step(d) == q {
			return d, true
		}
	}
	return "", false
}
