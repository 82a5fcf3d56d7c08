package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestMemoryStore_LatestEmpty(t *testing.T) {
	s := NewMemoryStore(0, 0)

	_, err := s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.History())
}

func TestMemoryStore_SaveAndLatest(t *testing.T) {
	s := NewMemoryStore(0, 0)
	now := time.Now().UTC()

	s.SaveDataset(weather.Dataset{Version: "a", LoadedAt: now})
	s.SaveDataset(weather.Dataset{Version: "b", LoadedAt: now})

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "b", latest.Version)
	assert.Len(t, s.History(), 2)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	now := time.Now().UTC()

	for _, v := range []string{"a", "b", "c"} {
		s.SaveDataset(weather.Dataset{Version: v, LoadedAt: now})
	}

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].Version)
	assert.Equal(t, "c", history[1].Version)
}

func TestMemoryStore_RetentionByAgeKeepsNewest(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	old := time.Now().Add(-3 * time.Hour)

	s.SaveDataset(weather.Dataset{Version: "old", LoadedAt: old})
	s.SaveDataset(weather.Dataset{Version: "older-but-last", LoadedAt: old})

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "older-but-last", history[0].Version)

	s.SaveDataset(weather.Dataset{Version: "fresh", LoadedAt: time.Now()})
	history = s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "fresh", history[0].Version)
}

func TestMemoryStore_HistoryIsACopy(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.SaveDataset(weather.Dataset{Version: "a", LoadedAt: time.Now()})

	history := s.History()
	history[0].Version = "mutated"

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "a", latest.Version)
}
