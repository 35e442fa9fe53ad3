package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("plain format", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("app", "", &buf)
		require.NoError(t, err)

		l.WithField("session", "abc").Info("session started")
		line := buf.String()
		assert.True(t, strings.HasPrefix(line, "[APP] [INFO] "), line)
		assert.Contains(t, line, "session started session=abc\n")
	})

	t.Run("level filter", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("app", "", &buf, WithLevel("warning"))
		require.NoError(t, err)

		l.Info("hidden")
		l.Debug("hidden")
		l.Warning("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "[WARNING] ")
	})

	t.Run("colored errors", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("db", ColorCyan, &buf)
		require.NoError(t, err)

		l.Error("boom")
		assert.True(t, strings.HasPrefix(buf.String(), ColorCyan+"[DB]"+ColorReset+" "+ColorRed+"[ERROR]"))
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := New("", "", &bytes.Buffer{})
		assert.Error(t, err)
		_, err = New("app", "", nil)
		assert.Error(t, err)
		_, err = New("app", "", &bytes.Buffer{}, WithLevel("loud"))
		assert.Error(t, err)
	})

	t.Run("color stays out of fields", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("app", ColorGreen, &buf)
		require.NoError(t, err)

		l.Info("ready")
		assert.NotContains(t, buf.String(), "color=")
	})
}

func TestBaseSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	base, err := NewBase(&buf, WithLevel("debug"))
	require.NoError(t, err)

	a, err := base.Named("game-api", ColorMagenta)
	require.NoError(t, err)
	b, err := base.Named("http", "")
	require.NoError(t, err)
	_, err = base.Named("", "")
	assert.Error(t, err)

	a.Debug("from a")
	b.Info("from b")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], ColorMagenta+"[GAME-API]"+ColorReset+" [DEBUG] "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[HTTP] [INFO] "), lines[1])
}

func TestRotatingFileSharedAcrossLoggers(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "maze.log")

	base, err := NewBase(io.Discard, WithRotatingFile(filename, 1, 3, 1))
	require.NoError(t, err)
	a, err := base.Named("a", ColorGreen)
	require.NoError(t, err)
	b, err := base.Named("b", ColorBlue)
	require.NoError(t, err)

	// About 1.2 MB through a forces at least one rotation of a 1 MB file.
	line := strings.Repeat("x", 1024)
	for n := 0; n < 1200; n++ {
		a.Info(line)
	}
	b.Info("b-after-rotation")

	backups, err := filepath.Glob(filepath.Join(dir, "maze-*.log"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups, "no rotation happened")

	current, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(current), "[B] [INFO] ")
	assert.Contains(t, string(current), "b-after-rotation")
	assert.NotContains(t, string(current), "\033[", "file output is uncolored")
}

