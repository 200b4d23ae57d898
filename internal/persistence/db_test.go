package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/config"
	"github.com/talgya/hamlet/internal/engine"
)

func runSim(t *testing.T, seed int64, years int) *engine.Simulation {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = seed
	cfg.Years = years
	sim, err := engine.NewSimulation(cfg)
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	return sim
}

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "hamlet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveWorldState(t *testing.T) {
	sim := runSim(t, 5, 5)
	db := openTemp(t)

	require.NoError(t, db.SaveWorldState(sim))
	// Saving twice replaces state and does not duplicate events.
	require.NoError(t, db.SaveWorldState(sim))

	seed, err := db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "5", seed)
	runID, err := db.GetMeta("run_id")
	require.NoError(t, err)
	assert.Equal(t, sim.RunID.String(), runID)

	events := sim.History().Events()
	require.NotEmpty(t, events)
	recent, err := db.RecentEvents(len(events) + 10)
	require.NoError(t, err)
	assert.Len(t, recent, len(events))
	assert.Equal(t, events[len(events)-1].UID.String(), recent[0].UID)

	first := events[0]
	id := first.Entities()[0]
	hist, err := db.History(uint64(id))
	require.NoError(t, err)
	require.NotEmpty(t, hist)
	assert.Equal(t, first.UID.String(), hist[0].UID)
	assert.Equal(t, uint64(id), hist[0].Bound[first.Roles[0].Name])

	rec, err := db.Entity(uint64(id))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Name)
}

func TestListenerBuffersUntilFlush(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 9
	cfg.Years = 3
	sim, err := engine.NewSimulation(cfg)
	require.NoError(t, err)

	db := openTemp(t)
	sim.Listen(db.Listener())
	require.NoError(t, sim.Run(context.Background()))

	assert.Equal(t, sim.History().Len(), db.Pending())
	require.NoError(t, db.Flush())
	assert.Zero(t, db.Pending())

	recent, err := db.RecentEvents(1000)
	require.NoError(t, err)
	assert.Len(t, recent, sim.History().Len())
}

func TestExportRoundTrip(t *testing.T) {
	sim := runSim(t, 21, 3)
	path := filepath.Join(t.TempDir(), "out", "run.json.zst")

	require.NoError(t, Export(sim, path))
	snap, err := ReadSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, int64(21), snap.Seed)
	assert.Equal(t, sim.RunID.String(), snap.RunID)
	assert.Equal(t, sim.Clock.Now.String(), snap.Date)
	assert.Len(t, snap.Entities, sim.World.Len())
	assert.Len(t, snap.Relationships, sim.Graph.Len())
	assert.Len(t, snap.Events, sim.History().Len())
	assert.NotEmpty(t, snap.Layout)
	assert.Equal(t, sim.Stats, snap.Stats)
}
