package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-bulletin/internal/dispatch"
)

var (
	// ErrNotFound is returned when no run has been recorded yet.
	ErrNotFound = errors.New("no runs recorded")
)

// Run summarizes one invocation of the pipeline. It never carries weather readings.
type Run struct {
	ID         string                    `json:"id"`
	StartedAt  time.Time                 `json:"startedAt"`
	Duration   time.Duration             `json:"duration"`
	Region     string                    `json:"region"`
	AirQuality string                    `json:"airQuality,omitempty"`
	Deliveries []dispatch.DeliveryResult `json:"deliveries,omitempty"`
	Failed     int                       `json:"failed"`
	Error      string                    `json:"error,omitempty"`
}

// MemoryStore is a concurrency-safe, bounded in-memory history of runs.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run // oldest first

	// retention configuration
	maxHistory int           // max number of runs kept
	maxAge     time.Duration // optional max age of runs

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRun appends a run and enforces retention.
func (s *MemoryStore) SaveRun(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = append([]Run(nil), s.runs[over:]...)
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.runs = append([]Run(nil), s.runs[i:]...)
		}
	}
}

// Latest returns the most recent run.
func (s *MemoryStore) Latest() (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return Run{}, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// Recent returns up to limit runs, newest first.
func (s *MemoryStore) Recent(limit int) []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}
	out := make([]Run, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out
}
