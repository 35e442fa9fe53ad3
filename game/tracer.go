package game

import (
	"fmt"

	"github.com/beka-birhanu/vinom-maze/maze"
)

// State is the phase of a trace.
type State int

const (
	Idle    State = iota // path empty, cursor on the start cell
	Tracing              // path non-empty, exit not reached
	Solved               // last node reached the exit; appends are refused until reset
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracing:
		return "tracing"
	case Solved:
		return "solved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for k := Idle; k <= Solved; k++ {
		if k.String() == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// MoveResult reports the outcome of an Append.
type MoveResult struct {
	Accepted bool `json:"accepted"`
	Solved   bool `json:"solved"`
}

// Tracer tracks a player's path over the expanded grid of one maze.
// It is not safe for concurrent use.
type Tracer struct {
	base    *maze.Lattice // classification right after Expand
	lattice *maze.Lattice // current classification
	start   maze.Node
	exit    maze.Node
	path    []maze.Node
	state   State
}

// NewTracer returns an idle tracer over the expanded grid of m.
func NewTracer(m *maze.Maze) *Tracer {
	base := m.Expand()
	return &Tracer{
		base:    base,
		lattice: base.Clone(),
		start:   m.StartCell().Node(),
		exit:    m.ExitCell().Node(),
	}
}

// State returns the current phase.
func (t *Tracer) State() State { return t.state }

// Path returns a copy of the claimed nodes in order.
func (t *Tracer) Path() []maze.Node {
	return append([]maze.Node(nil), t.path...)
}

// Tail returns the last claimed node, or the start node when the path is empty.
func (t *Tracer) Tail() maze.Node {
	if len(t.path) == 0 {
		return t.start
	}
	return t.path[len(t.path)-1]
}

// Lattice returns a snapshot of the current classifications.
func (t *Tracer) Lattice() *maze.Lattice {
	return t.lattice.Clone()
}

// Append drags the path from its tail to target in a straight line.
// The move is accepted only when target is Empty, shares a row or column
// with the tail, and every node between them is Empty. All traversed nodes
// are claimed at once. A rejected move changes nothing.
func (t *Tracer) Append(target maze.Node) (MoveResult, error) {
	class, err := t.lattice.At(target)
	if err != nil {
		return MoveResult{}, err
	}
	if t.state == Solved || class != maze.Empty {
		return MoveResult{}, nil
	}

	run, ok := t.straightRun(t.Tail(), target)
	if !ok {
		return MoveResult{}, nil
	}

	for _, n := range run {
		t.lattice.MustSet(n, maze.Path)
	}
	t.path = append(t.path, run...)
	t.updateState()

	return MoveResult{Accepted: true, Solved: t.state == Solved}, nil
}

// straightRun lists the nodes after from up to and including to, provided
// they are axis-aligned and every node on the way is Empty.
func (t *Tracer) straightRun(from, to maze.Node) ([]maze.Node, bool) {
	var dr, dc int
	switch {
	case from.Row == to.Row && from.Col != to.Col:
		dc = sign(to.Col - from.Col)
	case from.Col == to.Col && from.Row != to.Row:
		dr = sign(to.Row - from.Row)
	default:
		return nil, false
	}

	var run []maze.Node
	for n := from; n != to; {
		n = maze.Node{Row: n.Row + dr, Col: n.Col + dc}
		if class, _ := t.lattice.At(n); class != maze.Empty {
			return nil, false
		}
		run = append(run, n)
	}
	return run, true
}

func sign(x int) int {
	if x < 0 {
		return -1
	}
	return 1
}

// Retract removes the single most recently claimed node.
// It reports false when the path is empty.
func (t *Tracer) Retract() bool {
	if len(t.path) == 0 {
		return false
	}
	t.truncate(len(t.path) - 1)
	return true
}

// EraseAt retracts the tail only when node is the tail, which lets a
// collaborator implement drag-to-erase without knowing the path.
func (t *Tracer) EraseAt(node maze.Node) (bool, error) {
	if !t.lattice.InBound(node) {
		return false, fmt.Errorf("%w: %v", maze.ErrOutOfBounds, node)
	}
	if len(t.path) == 0 || t.path[len(t.path)-1] != node {
		return false, nil
	}
	return t.Retract(), nil
}

// TruncateAt cuts the path back to node: node stays claimed and every node
// after it is released. It reports false when node is not on the path.
func (t *Tracer) TruncateAt(node maze.Node) (bool, error) {
	class, err := t.lattice.At(node)
	if err != nil {
		return false, err
	}
	if class != maze.Path {
		return false, nil
	}

	for i, n := range t.path {
		if n == node {
			t.truncate(i + 1)
			return true, nil
		}
	}
	return false, nil
}

// truncate keeps the first k nodes of the path and releases the rest.
func (t *Tracer) truncate(k int) {
	for _, n := range t.path[k:] {
		t.lattice.MustSet(n, maze.Empty)
	}
	t.path = t.path[:k]
	t.updateState()
}

// Reset clears the path and restores the base classification.
func (t *Tracer) Reset() {
	t.lattice.CopyFrom(t.base)
	t.path = t.path[:0]
	t.state = Idle
}

func (t *Tracer) updateState() {
	switch {
	case len(t.path) == 0:
		t.state = Idle
	case t.path[len(t.path)-1].Adjacent(t.exit):
		t.state = Solved
	default:
		t.state = Tracing
	}
}
