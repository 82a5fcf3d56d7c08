package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no dataset has been loaded yet.
	ErrNotFound = errors.New("no weather dataset loaded")
)

// MemoryStore is a concurrency-safe in-memory store of dataset snapshots.
// The newest snapshot is the one served; older ones are kept for /datasets.
type MemoryStore struct {
	mu sync.RWMutex

	snapshots []weather.Dataset

	// retention configuration
	maxHistory int           // max number of snapshots kept
	maxAge     time.Duration // optional max age for snapshots
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveDataset appends a new snapshot and enforces retention. The newest
// snapshot is never evicted.
func (s *MemoryStore) SaveDataset(ds weather.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, ds)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.snapshots) > s.maxHistory {
		over := len(s.snapshots) - s.maxHistory
		s.snapshots = s.snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.snapshots)-1; i++ {
			if !s.snapshots[i].LoadedAt.Before(cutoff) {
				break
			}
		}
		s.snapshots = s.snapshots[i:]
	}
}

// Latest returns the most recent snapshot.
func (s *MemoryStore) Latest() (weather.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return weather.Dataset{}, ErrNotFound
	}
	return s.snapshots[len(s.snapshots)-1], nil
}

// History returns a copy of the retained snapshots, oldest first.
func (s *MemoryStore) History() []weather.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Dataset, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}
