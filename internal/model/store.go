package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/metrics"
	"go.uber.org/zap"
)

// Artifact file names produced by the offline training job.
const (
	ComponentsFile    = "model_components.json"
	RawToInnerIIDFile = "raw_to_inner_iid_map.json"
	RawToInnerUIDFile = "raw_to_inner_uid_map.json"
	InnerToRawIIDFile = "inner_to_raw_iid_map.json"
	AllIMDbIDsFile    = "all_movie_imdb_ids.json"
)

// Components are the raw factorization outputs: item vectors, user and
// item biases, and the global rating mean. Fields are explicit so a
// missing artifact key fails validation at load time instead of
// surfacing as a nil lookup mid-request.
type Components struct {
	Qi         [][]float64 `json:"qi"`
	Pu         [][]float64 `json:"pu"`
	Bu         []float64   `json:"bu"`
	Bi         []float64   `json:"bi"`
	GlobalMean float64     `json:"global_mean"`
}

// Snapshot is one fully loaded, immutable model generation. A Snapshot is
// never mutated after Load builds it; reload publishes a new Snapshot
// wholesale so concurrent readers never observe a half-loaded state.
type Snapshot struct {
	components Components

	rawToInnerIID map[string]int
	innerToRawIID map[int]string
	rawToInnerUID map[string]int

	// All IMDb IDs known to the model generation; used by the resolver to
	// recognize already-external identifiers during reverse conversion.
	allIMDbIDs map[string]struct{}
}

// ItemCount returns the number of item vectors in the embedding matrix.
func (s *Snapshot) ItemCount() int {
	return len(s.components.Qi)
}

// VectorFor returns the embedding vector for an inner index. The bounds
// check guards against drift between the ID map artifact and the matrix
// artifact, which are produced independently.
func (s *Snapshot) VectorFor(inner int) ([]float64, bool) {
	if inner < 0 || inner >= len(s.components.Qi) {
		return nil, false
	}
	return s.components.Qi[inner], true
}

// InnerIID returns the inner index for a raw item ID.
func (s *Snapshot) InnerIID(rawID string) (int, bool) {
	inner, ok := s.rawToInnerIID[rawID]
	return inner, ok
}

// RawIID returns the raw item ID for an inner index.
func (s *Snapshot) RawIID(inner int) (string, bool) {
	raw, ok := s.innerToRawIID[inner]
	return raw, ok
}

// InnerUID returns the inner index for a raw user ID.
func (s *Snapshot) InnerUID(rawID string) (int, bool) {
	inner, ok := s.rawToInnerUID[rawID]
	return inner, ok
}

// KnowsIMDbID reports whether the model generation knows this IMDb ID as
// a caller-facing identifier.
func (s *Snapshot) KnowsIMDbID(imdbID string) bool {
	_, ok := s.allIMDbIDs[imdbID]
	return ok
}

// EachItem calls fn for every (inner index, raw ID) pair in the item map,
// in ascending inner-index order so ranking output is deterministic.
func (s *Snapshot) EachItem(fn func(inner int, rawID string)) {
	for inner := 0; inner < s.ItemCount(); inner++ {
		raw, ok := s.innerToRawIID[inner]
		if !ok {
			continue
		}
		fn(inner, raw)
	}
}

// Estimate predicts a rating for (inner user, inner item) the way the
// factorization model does: global mean + both biases + dot product of
// the latent vectors. Indices out of range contribute only the terms
// that exist.
func (s *Snapshot) Estimate(innerUID, innerIID int) float64 {
	est := s.components.GlobalMean
	if innerUID >= 0 && innerUID < len(s.components.Bu) {
		est += s.components.Bu[innerUID]
	}
	if innerIID >= 0 && innerIID < len(s.components.Bi) {
		est += s.components.Bi[innerIID]
	}
	if innerUID >= 0 && innerUID < len(s.components.Pu) && innerIID >= 0 && innerIID < len(s.components.Qi) {
		pu := s.components.Pu[innerUID]
		qi := s.components.Qi[innerIID]
		n := len(pu)
		if len(qi) < n {
			n = len(qi)
		}
		for i := 0; i < n; i++ {
			est += pu[i] * qi[i]
		}
	}
	return est
}

// Store owns the current model snapshot. Requests read through an atomic
// pointer, so the hot path takes no lock; Load swaps the whole snapshot
// at once.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore creates an empty, not-ready store.
func NewStore() *Store {
	return &Store{}
}

// Ready reports whether a model generation has been loaded.
func (st *Store) Ready() bool {
	return st.snap.Load() != nil
}

// Snapshot returns the current model generation, or nil when not ready.
func (st *Store) Snapshot() *Snapshot {
	return st.snap.Load()
}

// Load reads all model artifacts from dir and atomically publishes them.
// A failed load leaves the previous snapshot (or the not-ready state)
// untouched: a partially initialized model must never replace a working
// one, and must never crash the serving process.
func (st *Store) Load(dir string) error {
	snap, err := loadSnapshot(dir)
	if err != nil {
		logger.Error("Model load failed, store stays in previous state",
			zap.String("dir", dir),
			zap.Error(err),
		)
		metrics.Get().ModelLoaded.Set(0)
		return err
	}

	st.snap.Store(snap)
	metrics.Get().ModelLoaded.Set(1)
	metrics.Get().ModelItemCount.Set(float64(snap.ItemCount()))

	logger.Log.Info("Model components loaded",
		zap.Int("items", snap.ItemCount()),
		zap.Int("users", len(snap.rawToInnerUID)),
		zap.Int("known_imdb_ids", len(snap.allIMDbIDs)),
	)
	return nil
}

func loadSnapshot(dir string) (*Snapshot, error) {
	var components Components
	if err := readJSONFile(filepath.Join(dir, ComponentsFile), &components); err != nil {
		return nil, fmt.Errorf("loading model components: %w", err)
	}
	if err := validateComponents(&components); err != nil {
		return nil, fmt.Errorf("invalid model components: %w", err)
	}

	rawToInnerIID := map[string]int{}
	if err := readJSONFile(filepath.Join(dir, RawToInnerIIDFile), &rawToInnerIID); err != nil {
		return nil, fmt.Errorf("loading item ID map: %w", err)
	}

	// Prefer the precomputed inverse artifact; rebuild it when absent so
	// older artifact sets still load.
	innerToRawIID := map[int]string{}
	if err := readJSONFile(filepath.Join(dir, InnerToRawIIDFile), &innerToRawIID); err != nil {
		innerToRawIID = invertIIDMap(rawToInnerIID)
	}

	snap := &Snapshot{
		components:    components,
		rawToInnerIID: rawToInnerIID,
		innerToRawIID: innerToRawIID,
		rawToInnerUID: map[string]int{},
		allIMDbIDs:    map[string]struct{}{},
	}

	// User map and known-ID list are optional: profile recommendations
	// work without them, user-history recommendations degrade to fallback.
	if err := readJSONFile(filepath.Join(dir, RawToInnerUIDFile), &snap.rawToInnerUID); err != nil {
		logger.Warn("User ID map not loaded, user-history recommendations disabled", zap.Error(err))
		snap.rawToInnerUID = map[string]int{}
	}

	var allIDs []string
	if err := readJSONFile(filepath.Join(dir, AllIMDbIDsFile), &allIDs); err != nil {
		logger.Warn("Known IMDb ID list not loaded", zap.Error(err))
	}
	for _, id := range allIDs {
		snap.allIMDbIDs[id] = struct{}{}
	}

	return snap, nil
}

func validateComponents(c *Components) error {
	if len(c.Qi) == 0 {
		return fmt.Errorf("item matrix qi is empty")
	}
	dim := len(c.Qi[0])
	if dim == 0 {
		return fmt.Errorf("item matrix qi has zero-dimensional vectors")
	}
	for i, v := range c.Qi {
		if len(v) != dim {
			return fmt.Errorf("item vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}

// invertIIDMap precomputes the inner-to-raw inverse once so ranking can do
// O(1) reverse lookups instead of scanning the forward map per item.
func invertIIDMap(m map[string]int) map[int]string {
	inv := make(map[int]string, len(m))
	for raw, inner := range m {
		inv[inner] = raw
	}
	return inv
}

func readJSONFile(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
