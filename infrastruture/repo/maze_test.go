package repo

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMazeRecord(t *testing.T) {
	m, err := maze.Generate(9, 6, 77)
	require.NoError(t, err)
	id, owner := uuid.New(), uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("document layout", func(t *testing.T) {
		raw, err := bson.Marshal(toRecord(id, owner, m, now))
		require.NoError(t, err)

		var flat bson.M
		require.NoError(t, bson.Unmarshal(raw, &flat))
		assert.Equal(t, id.String(), flat["_id"])
		assert.Equal(t, owner.String(), flat["owner"])
		assert.EqualValues(t, 9, flat["rows"])
		assert.EqualValues(t, 6, flat["cols"])
		assert.Contains(t, flat, "cells")
		assert.NotContains(t, flat, "mazedocument")
	})

	t.Run("round trip", func(t *testing.T) {
		raw, err := bson.Marshal(toRecord(id, owner, m, now))
		require.NoError(t, err)

		var record mazeRecord
		require.NoError(t, bson.Unmarshal(raw, &record))
		loaded, err := fromRecord(record)
		require.NoError(t, err)
		assert.Equal(t, m.Grid(), loaded.Grid())
		assert.Equal(t, m.StartCell(), loaded.StartCell())
		assert.Equal(t, m.ExitCell(), loaded.ExitCell())
	})

	t.Run("corrupt record", func(t *testing.T) {
		record := toRecord(id, owner, m, now)
		record.Cells[0][0].North = false

		loaded, err := fromRecord(record)
		assert.Nil(t, loaded)
		assert.ErrorIs(t, err, maze.ErrCorruptMaze)
		assert.Contains(t, err.Error(), id.String())
	})
}

func TestOwnedBy(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	assert.Equal(t, bson.M{"_id": id.String(), "owner": owner.String()}, ownedBy(id, owner))
}
