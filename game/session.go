package game

import (
	"errors"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/google/uuid"
)

// Session-related errors.
var (
	ErrRevealFailed = errors.New("solution route could not be traced")
)

// Session is one player's game on one maze. The tracer itself is
// single-threaded; the mutex serializes requests arriving on different
// goroutines.
type Session struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	Seed     uint64

	maze      *maze.Maze
	tracer    *Tracer
	route     []maze.Node // solver route, endpoints excluded
	createdAt time.Time
	touchedAt time.Time
	solvedAt  time.Time
	revealed  bool
	ranked    bool
	now       func() time.Time
	sync.Mutex
}

// Snapshot is a render-ready projection of a session.
type Snapshot struct {
	ID        uuid.UUID               `json:"id"`
	Rows      int                     `json:"rows"`
	Cols      int                     `json:"cols"`
	Seed      uint64                  `json:"seed"`
	Start     maze.CellPosition       `json:"start"`
	Exit      maze.CellPosition       `json:"exit"`
	Lattice   [][]maze.Classification `json:"lattice"`
	Path      []maze.Node             `json:"path"`
	State     State                   `json:"state"`
	Revealed  bool                    `json:"revealed"`
	Ranked    bool                    `json:"ranked"`
	CreatedAt time.Time               `json:"created_at"`
	SolvedIn  time.Duration           `json:"solved_in_ns,omitempty"`
}

// NewSession starts an idle session on m.
func NewSession(id, playerID uuid.UUID, m *maze.Maze, seed uint64) *Session {
	return newSession(id, playerID, m, seed, time.Now)
}

func newSession(id, playerID uuid.UUID, m *maze.Maze, seed uint64, now func() time.Time) *Session {
	route := maze.RouteNodes(maze.Solve(m))
	if len(route) >= 2 {
		route = route[1 : len(route)-1]
	}

	created := now()
	return &Session{
		ID:        id,
		PlayerID:  playerID,
		Seed:      seed,
		maze:      m,
		tracer:    NewTracer(m),
		route:     route,
		createdAt: created,
		touchedAt: created,
		ranked:    true,
		now:       now,
	}
}

// Maze returns the immutable maze the session is played on.
func (s *Session) Maze() *maze.Maze { return s.maze }

// Append forwards a straight drag to the tracer.
func (s *Session) Append(target maze.Node) (MoveResult, error) {
	s.Lock()
	defer s.Unlock()

	res, err := s.tracer.Append(target)
	s.touch()
	return res, err
}

// Retract undoes the last claimed node.
func (s *Session) Retract() bool {
	s.Lock()
	defer s.Unlock()

	ok := s.tracer.Retract()
	s.touch()
	return ok
}

// TruncateAt cuts the path back to node.
func (s *Session) TruncateAt(node maze.Node) (bool, error) {
	s.Lock()
	defer s.Unlock()

	ok, err := s.tracer.TruncateAt(node)
	s.touch()
	return ok, err
}

// EraseAt retracts the tail if node is the tail.
func (s *Session) EraseAt(node maze.Node) (bool, error) {
	s.Lock()
	defer s.Unlock()

	ok, err := s.tracer.EraseAt(node)
	s.touch()
	return ok, err
}

// Reset clears the trace.
func (s *Session) Reset() {
	s.Lock()
	defer s.Unlock()

	s.tracer.Reset()
	s.touch()
}

// Hint returns the solver route between start and exit on the lattice.
// It does not touch the trace, but a hinted session is no longer ranked.
func (s *Session) Hint() []maze.Node {
	s.Lock()
	defer s.Unlock()

	s.ranked = false
	return append([]maze.Node(nil), s.route...)
}

// Unrank excludes the session from the leaderboard.
func (s *Session) Unrank() {
	s.Lock()
	defer s.Unlock()
	s.ranked = false
}

// Ranked reports whether a solve of this session may be ranked: no hint
// was served and the route was not revealed.
func (s *Session) Ranked() bool {
	s.Lock()
	defer s.Unlock()
	return s.ranked
}

// Reveal replaces the trace with the solver route. A revealed session
// no longer counts as solved by the player.
func (s *Session) Reveal() (MoveResult, error) {
	s.Lock()
	defer s.Unlock()

	s.tracer.Reset()
	s.revealed = true
	s.ranked = false
	s.touch()

	var res MoveResult
	for _, n := range s.route {
		var err error
		if res, err = s.tracer.Append(n); err != nil {
			return res, err
		}
		if !res.Accepted {
			return res, ErrRevealFailed
		}
	}
	return res, nil
}

// SolvedIn reports how long the player took for the first unrevealed solve.
func (s *Session) SolvedIn() (time.Duration, bool) {
	s.Lock()
	defer s.Unlock()

	if s.solvedAt.IsZero() {
		return 0, false
	}
	return s.solvedAt.Sub(s.createdAt), true
}

// IdleSince returns the time of the last request.
func (s *Session) IdleSince() time.Time {
	s.Lock()
	defer s.Unlock()
	return s.touchedAt
}

// Snapshot captures the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.Lock()
	defer s.Unlock()

	snap := Snapshot{
		ID:        s.ID,
		Rows:      s.maze.Rows(),
		Cols:      s.maze.Cols(),
		Seed:      s.Seed,
		Start:     s.maze.StartCell(),
		Exit:      s.maze.ExitCell(),
		Lattice:   s.tracer.lattice.Grid(),
		Path:      s.tracer.Path(),
		State:     s.tracer.State(),
		Revealed:  s.revealed,
		Ranked:    s.ranked,
		CreatedAt: s.createdAt,
	}
	if !s.solvedAt.IsZero() {
		snap.SolvedIn = s.solvedAt.Sub(s.createdAt)
	}
	return snap
}

// touch records activity and the first genuine solve. Callers hold the lock.
func (s *Session) touch() {
	s.touchedAt = s.now()
	if s.tracer.State() == Solved && !s.revealed && s.solvedAt.IsZero() {
		s.solvedAt = s.touchedAt
	}
}
