package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", os.DevNull)
	os.Exit(m.Run())
}

func writeArtifact(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

// writeTestArtifacts lays down a minimal consistent artifact set: four
// items with 2-dimensional vectors and one known user.
func writeTestArtifacts(t *testing.T, dir string) {
	t.Helper()
	writeArtifact(t, dir, ComponentsFile, Components{
		Qi:         [][]float64{{1, 0}, {0, 1}, {1, 1}, {-1, 0}},
		Pu:         [][]float64{{1, 0}},
		Bu:         []float64{0.1},
		Bi:         []float64{0, 0.2, 0, 0},
		GlobalMean: 3.5,
	})
	writeArtifact(t, dir, RawToInnerIIDFile, map[string]int{"A": 0, "B": 1, "C": 2, "D": 3})
	writeArtifact(t, dir, RawToInnerUIDFile, map[string]int{"7": 0})
	writeArtifact(t, dir, AllIMDbIDsFile, []string{"A", "B", "C", "D"})
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)

	store := NewStore()
	assert.False(t, store.Ready())
	assert.Nil(t, store.Snapshot())

	require.NoError(t, store.Load(dir))
	require.True(t, store.Ready())

	snap := store.Snapshot()
	assert.Equal(t, 4, snap.ItemCount())

	inner, ok := snap.InnerIID("C")
	require.True(t, ok)
	assert.Equal(t, 2, inner)

	_, ok = snap.InnerIID("Z")
	assert.False(t, ok)

	uid, ok := snap.InnerUID("7")
	require.True(t, ok)
	assert.Equal(t, 0, uid)

	assert.True(t, snap.KnowsIMDbID("A"))
	assert.False(t, snap.KnowsIMDbID("Z"))
}

func TestStoreLoadRebuildsInverseMap(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)
	// No inner_to_raw artifact on disk; the inverse must be rebuilt from
	// the forward map.

	store := NewStore()
	require.NoError(t, store.Load(dir))

	snap := store.Snapshot()
	for raw, inner := range map[string]int{"A": 0, "B": 1, "C": 2, "D": 3} {
		got, ok := snap.RawIID(inner)
		require.True(t, ok)
		assert.Equal(t, raw, got)
	}
}

func TestStoreLoadPrefersInverseArtifact(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)
	writeArtifact(t, dir, InnerToRawIIDFile, map[int]string{0: "A", 1: "B", 2: "C", 3: "D"})

	store := NewStore()
	require.NoError(t, store.Load(dir))

	raw, ok := store.Snapshot().RawIID(3)
	require.True(t, ok)
	assert.Equal(t, "D", raw)
}

func TestStoreLoadMissingComponents(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, RawToInnerIIDFile, map[string]int{"A": 0})

	store := NewStore()
	err := store.Load(dir)
	assert.Error(t, err)
	assert.False(t, store.Ready())
}

func TestStoreLoadInvalidComponents(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)
	// Ragged matrix: second vector has a different dimension.
	writeArtifact(t, dir, ComponentsFile, Components{
		Qi: [][]float64{{1, 0}, {0, 1, 2}},
	})

	store := NewStore()
	err := store.Load(dir)
	assert.Error(t, err)
	assert.False(t, store.Ready())
}

func TestStoreFailedReloadKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)

	store := NewStore()
	require.NoError(t, store.Load(dir))
	before := store.Snapshot()

	// Corrupt the components file and reload.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ComponentsFile), []byte("{"), 0o644))
	assert.Error(t, store.Load(dir))

	assert.True(t, store.Ready())
	assert.Same(t, before, store.Snapshot())
}

func TestSnapshotVectorForBounds(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)

	store := NewStore()
	require.NoError(t, store.Load(dir))
	snap := store.Snapshot()

	v, ok := snap.VectorFor(0)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0}, v)

	_, ok = snap.VectorFor(-1)
	assert.False(t, ok)
	_, ok = snap.VectorFor(4)
	assert.False(t, ok)
}

func TestSnapshotEachItemAscendingOrder(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)

	store := NewStore()
	require.NoError(t, store.Load(dir))

	var order []string
	store.Snapshot().EachItem(func(inner int, rawID string) {
		order = append(order, rawID)
	})
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
}

func TestSnapshotEstimate(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifacts(t, dir)

	store := NewStore()
	require.NoError(t, store.Load(dir))
	snap := store.Snapshot()

	// global_mean + bu[0] + bi[1] + dot(pu[0], qi[1])
	// = 3.5 + 0.1 + 0.2 + 0
	assert.InDelta(t, 3.8, snap.Estimate(0, 1), 1e-9)

	// Out-of-range indices contribute only the global mean.
	assert.InDelta(t, 3.5, snap.Estimate(5, 9), 1e-9)
}
