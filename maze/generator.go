package maze

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Algorithm selects the spanning-tree construction used by GenerateWith.
type Algorithm int

const (
	// Wilson builds a uniform spanning tree with loop-erased random walks.
	Wilson Algorithm = iota
	// Backtracker carves with an iterative randomized depth-first search.
	Backtracker
)

func (a Algorithm) String() string {
	switch a {
	case Wilson:
		return "wilson"
	case Backtracker:
		return "backtracker"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wilson":
		return Wilson, nil
	case "backtracker", "dfs":
		return Backtracker, nil
	default:
		return Wilson, fmt.Errorf("unknown maze algorithm %q", s)
	}
}

// Generate builds a rows x cols perfect maze with Wilson's algorithm.
// The same seed always produces the same maze.
func Generate(rows, cols int, seed uint64) (*Maze, error) {
	return GenerateWith(rows, cols, seed, Wilson)
}

// GenerateWith builds a rows x cols perfect maze with the given algorithm and
// picks the two ends of its longest route as start and exit.
func GenerateWith(rows, cols int, seed uint64, alg Algorithm) (*Maze, error) {
	if !validDimension(rows) || !validDimension(cols) {
		return nil, fmt.Errorf("%w: %dx%d outside [%d, %d]", ErrInvalidSize, rows, cols, MinDimension, MaxDimension)
	}

	grid := make([][]Cell, rows)
	for i := range grid {
		grid[i] = make([]Cell, cols)
		for j := range grid[i] {
			grid[i][j] = closedCell()
		}
	}

	m := &Maze{rows: rows, cols: cols, grid: grid}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	switch alg {
	case Wilson:
		m.generateWilson(rng)
	case Backtracker:
		m.generateBacktracker(rng)
	default:
		return nil, fmt.Errorf("unknown maze algorithm %d", int(alg))
	}

	m.start, m.exit = m.farthestPair()
	return m, nil
}

// randomCellPosition generates a random position within the maze.
func (m *Maze) randomCellPosition(rng *rand.Rand) CellPosition {
	return CellPosition{Row: rng.IntN(m.rows), Col: rng.IntN(m.cols)}
}

// neighbors returns the in-bound neighbours of pos with the direction leading to each.
func (m *Maze) neighbors(pos CellPosition) []Direction {
	var result []Direction
	for _, d := range Directions {
		if m.InBound(pos.Step(d)) {
			result = append(result, d)
		}
	}
	return result
}

// openWall removes the wall between pos and its neighbour in direction d on both sides.
func (m *Maze) openWall(pos CellPosition, d Direction) {
	next := pos.Step(d)
	m.grid[pos.Row][pos.Col].setWall(d, false)
	m.grid[next.Row][next.Col].setWall(d.Opposite(), false)
}

// generateWilson grows the tree one loop-erased random walk at a time.
func (m *Maze) generateWilson(rng *rand.Rand) {
	inTree := make([][]bool, m.rows)
	for r := range inTree {
		inTree[r] = make([]bool, m.cols)
	}
	root := m.randomCellPosition(rng)
	inTree[root.Row][root.Col] = true

	// Scan order keeps the walk starts deterministic for a seed.
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if inTree[r][c] {
				continue
			}

			// Random walk until the tree is hit. Overwriting the exit
			// direction of a revisited cell erases the loop.
			exits := make(map[CellPosition]Direction)
			cell := CellPosition{Row: r, Col: c}
			for !inTree[cell.Row][cell.Col] {
				options := m.neighbors(cell)
				d := options[rng.IntN(len(options))]
				exits[cell] = d
				cell = cell.Step(d)
			}

			// Carve only the loop-erased path from the walk start.
			cell = CellPosition{Row: r, Col: c}
			for !inTree[cell.Row][cell.Col] {
				d := exits[cell]
				m.openWall(cell, d)
				inTree[cell.Row][cell.Col] = true
				cell = cell.Step(d)
			}
		}
	}
}

// generateBacktracker carves passages with an explicit stack.
func (m *Maze) generateBacktracker(rng *rand.Rand) {
	visited := make([][]bool, m.rows)
	for r := range visited {
		visited[r] = make([]bool, m.cols)
	}

	start := m.randomCellPosition(rng)
	visited[start.Row][start.Col] = true
	stack := []CellPosition{start}

	for len(stack) > 0 {
		cell := stack[len(stack)-1]

		var unvisited []Direction
		for _, d := range m.neighbors(cell) {
			next := cell.Step(d)
			if !visited[next.Row][next.Col] {
				unvisited = append(unvisited, d)
			}
		}
		if len(unvisited) == 0 {
			pop(&stack)
			continue
		}

		d := unvisited[rng.IntN(len(unvisited))]
		next := cell.Step(d)
		m.openWall(cell, d)
		visited[next.Row][next.Col] = true
		stack = append(stack, next)
	}
}

// pop removes and returns the last element of a stack of CellPositions.
func pop(s *[]CellPosition) CellPosition {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}

// farthestPair returns the two ends of a longest route in the maze:
// the cell farthest from the top-left corner, and the cell farthest from that one.
func (m *Maze) farthestPair() (CellPosition, CellPosition) {
	a := farthest(m.distances(CellPosition{}))
	b := farthest(m.distances(a))
	return a, b
}

// distances runs a breadth-first search from src over open passages.
func (m *Maze) distances(src CellPosition) map[CellPosition]int {
	dist := map[CellPosition]int{src: 0}
	queue := []CellPosition{src}
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		for _, next := range m.OpenNeighbors(cell) {
			if _, seen := dist[next]; !seen {
				dist[next] = dist[cell] + 1
				queue = append(queue, next)
			}
		}
	}
	return dist
}

// farthest picks the cell with the greatest distance, breaking ties by row then column.
func farthest(dist map[CellPosition]int) CellPosition {
	var best CellPosition
	bestDist := -1
	for pos, d := range dist {
		if d > bestDist || (d == bestDist && (pos.Row < best.Row || (pos.Row == best.Row && pos.Col < best.Col))) {
			best, bestDist = pos, d
		}
	}
	return best
}
