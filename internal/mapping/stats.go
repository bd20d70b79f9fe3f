package mapping

import "sync/atomic"

// Stats tracks mapping outcomes for the process lifetime. Counters are
// atomic because lookups run concurrently across requests; the values
// are diagnostic only.
type Stats struct {
	TotalRequests atomic.Int64
	DirectHits    atomic.Int64
	EnhancedHits  atomic.Int64
	Misses        atomic.Int64
	Errors        atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats, shaped for JSON.
type StatsSnapshot struct {
	TotalRequests int64   `json:"total_requests"`
	DirectHits    int64   `json:"direct_hits"`
	EnhancedHits  int64   `json:"enhanced_hits"`
	Misses        int64   `json:"misses"`
	Errors        int64   `json:"errors"`
	SuccessRate   float64 `json:"success_rate"`
}

// Snapshot reads all counters once and derives the success rate.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		TotalRequests: s.TotalRequests.Load(),
		DirectHits:    s.DirectHits.Load(),
		EnhancedHits:  s.EnhancedHits.Load(),
		Misses:        s.Misses.Load(),
		Errors:        s.Errors.Load(),
	}
	if snap.TotalRequests > 0 {
		snap.SuccessRate = float64(snap.DirectHits+snap.EnhancedHits) / float64(snap.TotalRequests)
	}
	return snap
}
