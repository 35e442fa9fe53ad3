package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-maze/encoder"
	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
)

const (
	defaultMazeSize   = 10
	leaderboardKeyFmt = "rows_%d:cols_%d"
)

var (
	ErrSessionNotFound     = errors.New("no session")
	ErrPersistenceDisabled = errors.New("maze persistence is not configured")
	ErrLeaderboardDisabled = errors.New("leaderboard is not configured")
	ErrUnknownCommand      = errors.New("unknown command")
)

var _ i.GameSessionManager = &GameSessionManager{}

// GameSessionManager keeps the live game sessions in memory, one maze and
// one tracer each, and forwards player intents to them.
type GameSessionManager struct {
	sessions         map[uuid.UUID]*game.Session
	mazeRepo         i.MazeRepo
	leaderboard      i.Leaderboard
	logger           i.Logger
	defaultSize      int
	defaultAlgorithm maze.Algorithm
	seeder           func() uint64
	now              func() time.Time
	sync.RWMutex
}

// Config holds the dependencies of a GameSessionManager.
// MazeRepo and Leaderboard are optional.
type Config struct {
	MazeRepo         i.MazeRepo
	Leaderboard      i.Leaderboard
	Logger           i.Logger
	DefaultSize      int
	DefaultAlgorithm maze.Algorithm
	Seeder           func() uint64
}

// NewGameSessionManager creates a session manager from c.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c == nil || c.Logger == nil {
		return nil, errors.New("session manager requires a logger")
	}

	size := c.DefaultSize
	if size == 0 {
		size = defaultMazeSize
	}
	if size < maze.MinDimension || size > maze.MaxDimension {
		return nil, fmt.Errorf("default size %d: %w", size, maze.ErrInvalidSize)
	}

	seeder := c.Seeder
	if seeder == nil {
		seeder = rand.Uint64
	}

	return &GameSessionManager{
		sessions:         make(map[uuid.UUID]*game.Session),
		mazeRepo:         c.MazeRepo,
		leaderboard:      c.Leaderboard,
		logger:           c.Logger,
		defaultSize:      size,
		defaultAlgorithm: c.DefaultAlgorithm,
		seeder:           seeder,
		now:              time.Now,
	}, nil
}

// NewSession generates a maze and starts a session on it for playerID.
func (g *GameSessionManager) NewSession(ctx context.Context, playerID uuid.UUID, req i.NewSessionRequest) (game.Snapshot, error) {
	rows, cols := req.Rows, req.Cols
	if rows == 0 {
		rows = g.defaultSize
	}
	if cols == 0 {
		cols = g.defaultSize
	}

	alg := g.defaultAlgorithm
	if req.Algorithm != "" {
		parsed, err := maze.ParseAlgorithm(req.Algorithm)
		if err != nil {
			return game.Snapshot{}, fmt.Errorf("%w: %v", maze.ErrInvalidSize, err)
		}
		alg = parsed
	}

	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed = g.seeder()
	}

	m, err := maze.GenerateWith(rows, cols, seed, alg)
	if err != nil {
		g.logger.Warning(fmt.Sprintf("creating maze %dx%d for player %s: %s", rows, cols, playerID, err))
		return game.Snapshot{}, err
	}

	session := g.saveSession(playerID, m, seed)
	g.logger.Info(fmt.Sprintf("started %dx%d %s game %s for player %s (seed %d)", rows, cols, alg, session.ID, playerID, seed))
	return session.Snapshot(), nil
}

// ImportSession starts a session on a maze decoded from its persisted form.
func (g *GameSessionManager) ImportSession(ctx context.Context, playerID uuid.UUID, raw []byte) (game.Snapshot, error) {
	m, err := encoder.Unmarshal(raw)
	if err != nil {
		g.logger.Warning(fmt.Sprintf("rejected imported maze from player %s: %s", playerID, err))
		return game.Snapshot{}, err
	}

	// The maze came from outside, so its solves are not comparable.
	session := g.saveSession(playerID, m, 0)
	session.Unrank()
	g.logger.Info(fmt.Sprintf("started imported game %s for player %s", session.ID, playerID))
	return session.Snapshot(), nil
}

// PlaySaved starts a session on a maze from the repository.
func (g *GameSessionManager) PlaySaved(ctx context.Context, playerID, mazeID uuid.UUID) (game.Snapshot, error) {
	if g.mazeRepo == nil {
		return game.Snapshot{}, ErrPersistenceDisabled
	}

	m, err := g.mazeRepo.ByID(ctx, mazeID)
	if err != nil {
		if errors.Is(err, maze.ErrCorruptMaze) {
			g.logger.Error(fmt.Sprintf("stored maze %s is corrupt: %s", mazeID, err))
		}
		return game.Snapshot{}, err
	}

	session := g.saveSession(playerID, m, 0)
	session.Unrank()
	g.logger.Info(fmt.Sprintf("started saved maze %s as game %s for player %s", mazeID, session.ID, playerID))
	return session.Snapshot(), nil
}

// Snapshot returns the current state of a session owned by playerID.
func (g *GameSessionManager) Snapshot(playerID, sessionID uuid.UUID) (game.Snapshot, error) {
	session, err := g.session(playerID, sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Move applies one player intent to a session.
func (g *GameSessionManager) Move(ctx context.Context, playerID, sessionID uuid.UUID, cmd i.Command) (i.MoveOutcome, error) {
	session, err := g.session(playerID, sessionID)
	if err != nil {
		return i.MoveOutcome{}, err
	}

	var accepted bool
	switch cmd.Kind {
	case i.CommandAppend:
		var res game.MoveResult
		res, err = session.Append(cmd.Node)
		accepted = res.Accepted
	case i.CommandRetract:
		accepted = session.Retract()
	case i.CommandTruncate:
		accepted, err = session.TruncateAt(cmd.Node)
	case i.CommandErase:
		accepted, err = session.EraseAt(cmd.Node)
	case i.CommandReset:
		session.Reset()
		accepted = true
	case i.CommandReveal:
		var res game.MoveResult
		res, err = session.Reveal()
		accepted = res.Accepted
	default:
		return i.MoveOutcome{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
	if err != nil {
		return i.MoveOutcome{}, err
	}

	snap := session.Snapshot()
	outcome := i.MoveOutcome{
		Accepted: accepted,
		Solved:   snap.State == game.Solved,
		Snapshot: snap,
	}

	if cmd.Kind == i.CommandAppend && outcome.Solved && accepted {
		g.recordSolve(ctx, session)
	}
	return outcome, nil
}

// Hint returns the solver route of a session's maze on the lattice.
func (g *GameSessionManager) Hint(playerID, sessionID uuid.UUID) ([]maze.Node, error) {
	session, err := g.session(playerID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Hint(), nil
}

// ExportMaze encodes a session's maze in its persisted form.
func (g *GameSessionManager) ExportMaze(playerID, sessionID uuid.UUID) ([]byte, error) {
	session, err := g.session(playerID, sessionID)
	if err != nil {
		return nil, err
	}
	return encoder.Marshal(session.Maze())
}

// SaveMaze stores a session's maze in the repository and returns its id.
func (g *GameSessionManager) SaveMaze(ctx context.Context, playerID, sessionID uuid.UUID) (uuid.UUID, error) {
	if g.mazeRepo == nil {
		return uuid.Nil, ErrPersistenceDisabled
	}

	session, err := g.session(playerID, sessionID)
	if err != nil {
		return uuid.Nil, err
	}

	mazeID := uuid.New()
	if err := g.mazeRepo.Save(ctx, mazeID, playerID, session.Maze()); err != nil {
		g.logger.Error(fmt.Sprintf("saving maze of game %s: %s", sessionID, err))
		return uuid.Nil, err
	}

	g.logger.Info(fmt.Sprintf("saved maze of game %s as %s", sessionID, mazeID))
	return mazeID, nil
}

// DeleteSaved removes a maze playerID saved earlier.
func (g *GameSessionManager) DeleteSaved(ctx context.Context, playerID, mazeID uuid.UUID) error {
	if g.mazeRepo == nil {
		return ErrPersistenceDisabled
	}

	if err := g.mazeRepo.Delete(ctx, mazeID, playerID); err != nil {
		if !errors.Is(err, i.ErrMazeNotFound) {
			g.logger.Error(fmt.Sprintf("deleting maze %s: %s", mazeID, err))
		}
		return err
	}

	g.logger.Info(fmt.Sprintf("player %s deleted maze %s", playerID, mazeID))
	return nil
}

// EndSession discards a session.
func (g *GameSessionManager) EndSession(playerID, sessionID uuid.UUID) error {
	if _, err := g.session(playerID, sessionID); err != nil {
		return err
	}

	g.Lock()
	delete(g.sessions, sessionID)
	g.Unlock()

	g.logger.Info(fmt.Sprintf("ended game %s", sessionID))
	return nil
}

// Leaderboard returns the fastest solves on rows x cols mazes, in milliseconds.
func (g *GameSessionManager) Leaderboard(ctx context.Context, rows, cols int, limit int64) ([]i.LeaderboardEntry, error) {
	if g.leaderboard == nil {
		return nil, ErrLeaderboardDisabled
	}
	return g.leaderboard.Top(ctx, boardKey(rows, cols), limit)
}

// Prune discards sessions idle for longer than maxIdle and returns how many were removed.
func (g *GameSessionManager) Prune(maxIdle time.Duration) int {
	cutoff := g.now().Add(-maxIdle)

	g.Lock()
	defer g.Unlock()

	removed := 0
	for id, session := range g.sessions {
		if session.IdleSince().Before(cutoff) {
			delete(g.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes idle sessions every interval until ctx is done.
func (g *GameSessionManager) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := g.Prune(maxIdle); n > 0 {
				g.logger.Info(fmt.Sprintf("pruned %d idle games, %d live", n, g.Count()))
			}
		}
	}
}

// Count returns the number of live sessions.
func (g *GameSessionManager) Count() int {
	g.RLock()
	defer g.RUnlock()
	return len(g.sessions)
}

func (g *GameSessionManager) session(playerID, sessionID uuid.UUID) (*game.Session, error) {
	g.RLock()
	defer g.RUnlock()

	session, ok := g.sessions[sessionID]
	if !ok || session.PlayerID != playerID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (g *GameSessionManager) saveSession(playerID uuid.UUID, m *maze.Maze, seed uint64) *game.Session {
	g.Lock()
	defer g.Unlock()

	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}

	session := game.NewSession(sessionID, playerID, m, seed)
	g.sessions[sessionID] = session
	return session
}

func (g *GameSessionManager) recordSolve(ctx context.Context, session *game.Session) {
	took, ok := session.SolvedIn()
	if !ok {
		return
	}

	if !session.Ranked() {
		g.logger.Info(fmt.Sprintf("player %s solved unranked game %s in %s", session.PlayerID, session.ID, took))
		return
	}

	g.logger.Info(fmt.Sprintf("player %s solved game %s in %s", session.PlayerID, session.ID, took))
	if g.leaderboard == nil {
		return
	}

	m := session.Maze()
	stored, err := g.leaderboard.Record(ctx, boardKey(m.Rows(), m.Cols()), session.PlayerID.String(), float64(took.Milliseconds()))
	if err != nil {
		g.logger.Error(fmt.Sprintf("recording solve of game %s: %s", session.ID, err))
		return
	}
	if stored {
		g.logger.Info(fmt.Sprintf("new best time for player %s on %dx%d", session.PlayerID, m.Rows(), m.Cols()))
	}
}

func boardKey(rows, cols int) string {
	return fmt.Sprintf(leaderboardKeyFmt, rows, cols)
}
