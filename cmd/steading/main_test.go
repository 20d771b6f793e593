package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/steading/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 17
	cfg.SavePath = filepath.Join(t.TempDir(), "steading.db")
	return cfg
}

func TestOpenWorldFoundsFreshSettlement(t *testing.T) {
	cfg := testConfig(t)

	eng, db, err := openWorld(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 0, eng.Day)
	assert.Equal(t, cfg.BasePopulation, eng.Population)

	id, err := db.GetMeta("world_id")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestOpenWorldRestoresSavedDay(t *testing.T) {
	cfg := testConfig(t)

	eng, db, err := openWorld(cfg)
	require.NoError(t, err)
	eng.OpenDay()
	eng.CloseDay()
	eng.OpenDay()
	eng.CloseDay()
	require.NoError(t, saveWorld(eng, db))
	require.NoError(t, db.Close())

	restored, db, err := openWorld(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 2, restored.Day)
	assert.Equal(t, eng.Population, restored.Population)
	assert.Equal(t, len(eng.Events), len(restored.Events),
		"the chronicle survives a reopen")
}

func TestOpenWorldRefoundsOnRejectedSave(t *testing.T) {
	cfg := testConfig(t)

	eng, db, err := openWorld(cfg)
	require.NoError(t, err)
	firstID, err := db.GetMeta("world_id")
	require.NoError(t, err)

	bad := eng.Serialize()
	bad.Day = 9
	bad.Population = 0
	require.NoError(t, db.SaveSnapshot(bad))
	require.NoError(t, db.Close())

	fresh, db, err := openWorld(cfg)
	require.NoError(t, err, "a dead save must never abort the open")
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 0, fresh.Day)
	assert.Equal(t, cfg.BasePopulation, fresh.Population)

	has, err := db.HasSnapshot()
	require.NoError(t, err)
	assert.False(t, has, "the dead rows are cleared with the refound")
	secondID, err := db.GetMeta("world_id")
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)
}
