package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-maze/encoder"
	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string)   {}
func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

type memRepo struct {
	mazes  map[uuid.UUID][]byte
	owners map[uuid.UUID]uuid.UUID
	sync.Mutex
}

func (r *memRepo) Save(_ context.Context, id, owner uuid.UUID, m *maze.Maze) error {
	r.Lock()
	defer r.Unlock()
	b, err := encoder.Marshal(m)
	if err != nil {
		return err
	}
	r.mazes[id] = b
	r.owners[id] = owner
	return nil
}

func (r *memRepo) ByID(_ context.Context, id uuid.UUID) (*maze.Maze, error) {
	r.Lock()
	defer r.Unlock()
	b, ok := r.mazes[id]
	if !ok {
		return nil, i.ErrMazeNotFound
	}
	return encoder.Unmarshal(b)
}

func (r *memRepo) Delete(_ context.Context, id, owner uuid.UUID) error {
	r.Lock()
	defer r.Unlock()
	if o, ok := r.owners[id]; !ok || o != owner {
		return i.ErrMazeNotFound
	}
	delete(r.mazes, id)
	delete(r.owners, id)
	return nil
}

type memLeaderboard struct {
	boards map[string]map[string]float64
	sync.Mutex
}

func (l *memLeaderboard) Record(_ context.Context, board, player string, score float64) (bool, error) {
	l.Lock()
	defer l.Unlock()
	if l.boards[board] == nil {
		l.boards[board] = make(map[string]float64)
	}
	if prev, ok := l.boards[board][player]; ok && prev <= score {
		return false, nil
	}
	l.boards[board][player] = score
	return true, nil
}

func (l *memLeaderboard) Top(_ context.Context, board string, limit int64) ([]i.LeaderboardEntry, error) {
	l.Lock()
	defer l.Unlock()
	entries := make([]i.LeaderboardEntry, 0, len(l.boards[board]))
	for p, s := range l.boards[board] {
		entries = append(entries, i.LeaderboardEntry{Player: p, Score: s})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Score < entries[b].Score })
	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func newTestManager(t *testing.T, withStores bool) (*GameSessionManager, *memRepo, *memLeaderboard) {
	t.Helper()
	repo := &memRepo{mazes: make(map[uuid.UUID][]byte), owners: make(map[uuid.UUID]uuid.UUID)}
	board := &memLeaderboard{boards: make(map[string]map[string]float64)}

	c := &Config{Logger: nopLogger{}, DefaultSize: 6, Seeder: func() uint64 { return 42 }}
	if withStores {
		c.MazeRepo = repo
		c.Leaderboard = board
	}
	g, err := NewGameSessionManager(c)
	require.NoError(t, err)
	return g, repo, board
}

func seedOf(v uint64) *uint64 { return &v }

func TestNewGameSessionManager(t *testing.T) {
	t.Run("requires a logger", func(t *testing.T) {
		_, err := NewGameSessionManager(&Config{})
		assert.Error(t, err)
	})

	t.Run("rejects an invalid default size", func(t *testing.T) {
		_, err := NewGameSessionManager(&Config{Logger: nopLogger{}, DefaultSize: 3})
		assert.ErrorIs(t, err, maze.ErrInvalidSize)
	})
}

func TestNewSession(t *testing.T) {
	g, _, _ := newTestManager(t, false)
	player := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		snap, err := g.NewSession(context.Background(), player, i.NewSessionRequest{})
		require.NoError(t, err)
		assert.Equal(t, 6, snap.Rows)
		assert.Equal(t, 6, snap.Cols)
		assert.Equal(t, uint64(42), snap.Seed)
		assert.Equal(t, game.Idle, snap.State)
		assert.Len(t, snap.Lattice, 13)
	})

	t.Run("same seed same maze", func(t *testing.T) {
		req := i.NewSessionRequest{Rows: 8, Cols: 11, Seed: seedOf(7), Algorithm: "backtracker"}
		a, err := g.NewSession(context.Background(), player, req)
		require.NoError(t, err)
		b, err := g.NewSession(context.Background(), player, req)
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, a.Lattice, b.Lattice)
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := g.NewSession(context.Background(), player, i.NewSessionRequest{Rows: 21, Cols: 5})
		assert.ErrorIs(t, err, maze.ErrInvalidSize)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := g.NewSession(context.Background(), player, i.NewSessionRequest{Algorithm: "prim"})
		assert.ErrorIs(t, err, maze.ErrInvalidSize)
	})
}

func TestSessionOwnership(t *testing.T) {
	g, _, _ := newTestManager(t, false)
	owner, other := uuid.New(), uuid.New()

	snap, err := g.NewSession(context.Background(), owner, i.NewSessionRequest{})
	require.NoError(t, err)

	_, err = g.Snapshot(other, snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = g.Move(context.Background(), other, snap.ID, i.Command{Kind: i.CommandRetract})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, g.EndSession(other, snap.ID), ErrSessionNotFound)

	require.NoError(t, g.EndSession(owner, snap.ID))
	_, err = g.Snapshot(owner, snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, g.Count())
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	g, _, board := newTestManager(t, true)
	player := uuid.New()

	snap, err := g.NewSession(ctx, player, i.NewSessionRequest{Rows: 7, Cols: 9, Seed: seedOf(11)})
	require.NoError(t, err)

	hint, err := g.Hint(player, snap.ID)
	require.NoError(t, err)
	require.NotEmpty(t, hint)

	t.Run("unknown command", func(t *testing.T) {
		_, err := g.Move(ctx, player, snap.ID, i.Command{Kind: "jump"})
		assert.ErrorIs(t, err, ErrUnknownCommand)
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := g.Move(ctx, player, snap.ID, i.Command{Kind: i.CommandAppend, Node: maze.Node{Row: 99, Col: 0}})
		assert.ErrorIs(t, err, maze.ErrOutOfBounds)
	})

	t.Run("retract on empty trace", func(t *testing.T) {
		out, err := g.Move(ctx, player, snap.ID, i.Command{Kind: i.CommandRetract})
		require.NoError(t, err)
		assert.False(t, out.Accepted)
		assert.Equal(t, game.Idle, out.Snapshot.State)
	})

	t.Run("hinted solve is not ranked", func(t *testing.T) {
		var out i.MoveOutcome
		for _, n := range hint {
			out, err = g.Move(ctx, player, snap.ID, i.Command{Kind: i.CommandAppend, Node: n})
			require.NoError(t, err)
			require.True(t, out.Accepted)
		}
		assert.True(t, out.Solved)
		assert.False(t, out.Snapshot.Ranked)
		assert.Equal(t, hint, out.Snapshot.Path)

		top, err := g.Leaderboard(ctx, 7, 9, 10)
		require.NoError(t, err)
		assert.Empty(t, top)
		assert.Empty(t, board.boards["rows_7:cols_9"])
	})

	t.Run("truncate then reset", func(t *testing.T) {
		out, err := g.Move(ctx, player, snap.ID, i.Command{Kind: i.CommandTruncate, Node: hint[2]})
		require.NoError(t, err)
		assert.True(t, out.Accepted)
		assert.Len(t, out.Snapshot.Path, 3)
		assert.Equal(t, game.Tracing, out.Snapshot.State)

		out, err = g.Move(ctx, player, snap.ID, i.Command{Kind: i.CommandReset})
		require.NoError(t, err)
		assert.True(t, out.Accepted)
		assert.Empty(t, out.Snapshot.Path)
		assert.Equal(t, game.Idle, out.Snapshot.State)
	})

	t.Run("reveal does not reach the leaderboard", func(t *testing.T) {
		other := uuid.New()
		revealed, err := g.NewSession(ctx, other, i.NewSessionRequest{Rows: 7, Cols: 9, Seed: seedOf(12)})
		require.NoError(t, err)

		out, err := g.Move(ctx, other, revealed.ID, i.Command{Kind: i.CommandReveal})
		require.NoError(t, err)
		assert.True(t, out.Solved)
		assert.True(t, out.Snapshot.Revealed)

		top, err := g.Leaderboard(ctx, 7, 9, 10)
		require.NoError(t, err)
		assert.Empty(t, top)
	})
}

// solveWithoutHint traces the solver route of the maze generated from the
// same arguments, leaving the session ranked.
func solveWithoutHint(t *testing.T, g *GameSessionManager, player uuid.UUID, snap game.Snapshot) i.MoveOutcome {
	t.Helper()
	m, err := maze.Generate(snap.Rows, snap.Cols, snap.Seed)
	require.NoError(t, err)
	route := maze.RouteNodes(maze.Solve(m))

	var out i.MoveOutcome
	for _, n := range route[1 : len(route)-1] {
		out, err = g.Move(context.Background(), player, snap.ID, i.Command{Kind: i.CommandAppend, Node: n})
		require.NoError(t, err)
		require.True(t, out.Accepted)
	}
	require.True(t, out.Solved)
	return out
}

func TestLeaderboardRanking(t *testing.T) {
	ctx := context.Background()

	t.Run("unaided solve is ranked", func(t *testing.T) {
		g, _, _ := newTestManager(t, true)
		player := uuid.New()
		snap, err := g.NewSession(ctx, player, i.NewSessionRequest{Rows: 7, Cols: 9, Seed: seedOf(11)})
		require.NoError(t, err)
		assert.True(t, snap.Ranked)

		out := solveWithoutHint(t, g, player, snap)
		assert.True(t, out.Snapshot.Ranked)

		top, err := g.Leaderboard(ctx, 7, 9, 10)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, player.String(), top[0].Player)
	})

	t.Run("imported maze is not ranked", func(t *testing.T) {
		g, _, _ := newTestManager(t, true)
		player := uuid.New()
		snap, err := g.NewSession(ctx, player, i.NewSessionRequest{Rows: 7, Cols: 9, Seed: seedOf(11)})
		require.NoError(t, err)
		raw, err := g.ExportMaze(player, snap.ID)
		require.NoError(t, err)

		imported, err := g.ImportSession(ctx, player, raw)
		require.NoError(t, err)
		assert.False(t, imported.Ranked)
		imported.Seed = snap.Seed
		solveWithoutHint(t, g, player, imported)

		top, err := g.Leaderboard(ctx, 7, 9, 10)
		require.NoError(t, err)
		assert.Empty(t, top)
	})

	t.Run("saved maze is not ranked", func(t *testing.T) {
		g, _, _ := newTestManager(t, true)
		player := uuid.New()
		snap, err := g.NewSession(ctx, player, i.NewSessionRequest{Rows: 7, Cols: 9, Seed: seedOf(11)})
		require.NoError(t, err)
		mazeID, err := g.SaveMaze(ctx, player, snap.ID)
		require.NoError(t, err)

		replay, err := g.PlaySaved(ctx, player, mazeID)
		require.NoError(t, err)
		assert.False(t, replay.Ranked)
		replay.Seed = snap.Seed
		solveWithoutHint(t, g, player, replay)

		top, err := g.Leaderboard(ctx, 7, 9, 10)
		require.NoError(t, err)
		assert.Empty(t, top)
	})
}

func TestHintDoesNotChangeSession(t *testing.T) {
	g, _, _ := newTestManager(t, false)
	player := uuid.New()
	snap, err := g.NewSession(context.Background(), player, i.NewSessionRequest{})
	require.NoError(t, err)

	_, err = g.Hint(player, snap.ID)
	require.NoError(t, err)

	after, err := g.Snapshot(player, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Lattice, after.Lattice)
	assert.Equal(t, game.Idle, after.State)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newTestManager(t, false)
	player := uuid.New()

	snap, err := g.NewSession(ctx, player, i.NewSessionRequest{Rows: 5, Cols: 13, Seed: seedOf(3)})
	require.NoError(t, err)

	raw, err := g.ExportMaze(player, snap.ID)
	require.NoError(t, err)

	imported, err := g.ImportSession(ctx, player, raw)
	require.NoError(t, err)
	assert.NotEqual(t, snap.ID, imported.ID)
	assert.Equal(t, snap.Lattice, imported.Lattice)
	assert.Equal(t, snap.Start, imported.Start)
	assert.Equal(t, snap.Exit, imported.Exit)

	_, err = g.ImportSession(ctx, player, []byte("junk"))
	assert.ErrorIs(t, err, maze.ErrCorruptMaze)
}

func TestSaveAndPlaySaved(t *testing.T) {
	ctx := context.Background()
	player := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		g, repo, _ := newTestManager(t, true)
		snap, err := g.NewSession(ctx, player, i.NewSessionRequest{})
		require.NoError(t, err)

		mazeID, err := g.SaveMaze(ctx, player, snap.ID)
		require.NoError(t, err)
		assert.Contains(t, repo.mazes, mazeID)

		replay, err := g.PlaySaved(ctx, uuid.New(), mazeID)
		require.NoError(t, err)
		assert.Equal(t, snap.Lattice, replay.Lattice)

		_, err = g.PlaySaved(ctx, player, uuid.New())
		assert.True(t, errors.Is(err, i.ErrMazeNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		g, repo, _ := newTestManager(t, true)
		snap, err := g.NewSession(ctx, player, i.NewSessionRequest{})
		require.NoError(t, err)
		mazeID, err := g.SaveMaze(ctx, player, snap.ID)
		require.NoError(t, err)

		err = g.DeleteSaved(ctx, uuid.New(), mazeID)
		assert.ErrorIs(t, err, i.ErrMazeNotFound)
		assert.Contains(t, repo.mazes, mazeID)

		require.NoError(t, g.DeleteSaved(ctx, player, mazeID))
		assert.NotContains(t, repo.mazes, mazeID)
		_, err = g.PlaySaved(ctx, player, mazeID)
		assert.ErrorIs(t, err, i.ErrMazeNotFound)
		assert.ErrorIs(t, g.DeleteSaved(ctx, player, mazeID), i.ErrMazeNotFound)
	})

	t.Run("persistence disabled", func(t *testing.T) {
		g, _, _ := newTestManager(t, false)
		snap, err := g.NewSession(ctx, player, i.NewSessionRequest{})
		require.NoError(t, err)

		_, err = g.SaveMaze(ctx, player, snap.ID)
		assert.ErrorIs(t, err, ErrPersistenceDisabled)
		_, err = g.PlaySaved(ctx, player, uuid.New())
		assert.ErrorIs(t, err, ErrPersistenceDisabled)
		assert.ErrorIs(t, g.DeleteSaved(ctx, player, uuid.New()), ErrPersistenceDisabled)
		_, err = g.Leaderboard(ctx, 6, 6, 10)
		assert.ErrorIs(t, err, ErrLeaderboardDisabled)
	})
}

func TestPrune(t *testing.T) {
	g, _, _ := newTestManager(t, false)
	player := uuid.New()
	for n := 0; n < 3; n++ {
		_, err := g.NewSession(context.Background(), player, i.NewSessionRequest{})
		require.NoError(t, err)
	}

	assert.Zero(t, g.Prune(time.Hour))
	assert.Equal(t, 3, g.Count())

	g.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 3, g.Prune(time.Hour))
	assert.Zero(t, g.Count())
}

func TestRunStopsWithContext(t *testing.T) {
	g, _, _ := newTestManager(t, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		g.Run(ctx, time.Millisecond, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
