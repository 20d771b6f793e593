package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/steading/internal/config"
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/engine"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "steading.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testState(t *testing.T, day int) engine.GameState {
	t.Helper()
	st := engine.New(config.Default()).Serialize()
	st.Day = day
	return st
}

func TestSaveAndLoadLatest(t *testing.T) {
	db := newTestDB(t)
	st := testState(t, 1)
	st.Resources[economy.Wood] = 37.5
	st.Happiness = 61.25

	require.NoError(t, db.SaveSnapshot(st))

	loaded, err := db.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, st, loaded)
}

func TestSnapshotChainGrows(t *testing.T) {
	db := newTestDB(t)
	for day := 1; day <= 3; day++ {
		require.NoError(t, db.SaveSnapshot(testState(t, day)))
	}

	n, err := db.VerifyChain()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	loaded, err := db.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Day)

	day2, err := db.LoadDay(2)
	require.NoError(t, err)
	assert.Equal(t, 2, day2.Day)
}

func TestResavingADayTruncatesTheFuture(t *testing.T) {
	db := newTestDB(t)
	for day := 1; day <= 3; day++ {
		require.NoError(t, db.SaveSnapshot(testState(t, day)))
	}

	redo := testState(t, 2)
	redo.Resources[economy.Wood] = 77
	require.NoError(t, db.SaveSnapshot(redo))

	n, err := db.VerifyChain()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := db.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Day)
	assert.Equal(t, 77.0, loaded.Resources[economy.Wood])

	_, err = db.LoadDay(3)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestCorruptBlobIsRejected(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.SaveSnapshot(testState(t, 1)))

	_, err := db.conn.Exec("UPDATE snapshots SET state_blob = X'DEADBEEF' WHERE day = 1")
	require.NoError(t, err)

	_, err = db.LoadLatest()
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	_, err = db.VerifyChain()
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestRewrittenHistoryBreaksTheChain(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.SaveSnapshot(testState(t, 1)))
	require.NoError(t, db.SaveSnapshot(testState(t, 2)))

	// Recompute day 1's checksum over tampered bytes, as a careful
	// attacker would. Day 2 still links to the original.
	forged := []byte("not the real past")
	_, err := db.conn.Exec(
		"UPDATE snapshots SET state_blob = ?, checksum = ? WHERE day = 1",
		forged, chainSum("", forged))
	require.NoError(t, err)

	_, err = db.VerifyChain()
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestEmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	_, err := db.LoadLatest()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	has, err := db.HasSnapshot()
	require.NoError(t, err)
	assert.False(t, has)

	n, err := db.VerifyChain()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEnsureWorldIsStable(t *testing.T) {
	db := newTestDB(t)

	id, created, err := db.EnsureWorld(42, "normal")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, id)

	again, created, err := db.EnsureWorld(99, "hard")
	require.NoError(t, err)
	assert.False(t, created, "a second open must not mint a new world")
	assert.Equal(t, id, again)

	seed, err := db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "42", seed, "identity keeps the founding seed")
}

func TestEventLogReplace(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.SaveEvents([]engine.Event{
		{Day: 1, Description: "a sawmill rose", Category: "construction"},
		{Day: 2, Description: "gentle rains", Category: "omen"},
		{Day: 3, Description: "a child was born", Category: "hearth"},
	}))

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "a child was born", events[0].Description, "newest first")

	require.NoError(t, db.SaveEvents([]engine.Event{
		{Day: 4, Description: "storm winds", Category: "omen"},
	}))
	events, err = db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestResetWipesTheStore(t *testing.T) {
	db := newTestDB(t)
	first, _, err := db.EnsureWorld(7, "normal")
	require.NoError(t, err)
	require.NoError(t, db.SaveSnapshot(testState(t, 1)))
	require.NoError(t, db.SaveEvents([]engine.Event{
		{Day: 1, Description: "old world", Category: "omen"},
	}))

	require.NoError(t, db.Reset())

	has, err := db.HasSnapshot()
	require.NoError(t, err)
	assert.False(t, has)
	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	assert.Empty(t, events)

	second, created, err := db.EnsureWorld(7, "normal")
	require.NoError(t, err)
	assert.True(t, created, "the old identity must not survive a reset")
	assert.NotEqual(t, first, second)
}

func TestMetaRoundTrip(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SaveMeta("note", "first"))
	require.NoError(t, db.SaveMeta("note", "second"))

	value, err := db.GetMeta("note")
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}
