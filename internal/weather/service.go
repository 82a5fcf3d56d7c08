package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrEmptyDataset is returned when a source loads successfully but yields no rows.
var ErrEmptyDataset = errors.New("dataset has no observations")

// Service loads observations from a source, attaches stories and answers
// dashboard queries against the latest snapshot.
type Service struct {
	store    Store
	source   Source
	narrator Narrator
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(logger zerolog.Logger, store Store, source Source, narrator Narrator) *Service {
	return &Service{
		store:    store,
		source:   source,
		narrator: narrator,
		logger:   logger.With().Str("component", "weather-service").Logger(),
		now:      time.Now,
	}
}

// Refresh loads the source, narrates every row and stores a new snapshot.
// On failure the previous snapshot stays current.
func (s *Service) Refresh(ctx context.Context) error {
	start := s.now()

	observations, err := s.source.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("source", s.source.Name()).Msg("dataset load failed; keeping last good snapshot")
		return fmt.Errorf("load %s: %w", s.source.Name(), err)
	}
	if len(observations) == 0 {
		s.logger.Warn().Str("source", s.source.Name()).Msg("source returned no observations; keeping last good snapshot")
		return ErrEmptyDataset
	}

	ds := Dataset{
		Version:  uuid.NewString(),
		Source:   s.source.Name(),
		LoadedAt: s.now().UTC(),
		Rows:     s.NarrateAll(observations),
	}
	s.store.SaveDataset(ds)

	s.logger.Info().
		Str("version", ds.Version).
		Int("rows", len(ds.Rows)).
		Dur("took", s.now().Sub(start)).
		Msg("dataset refreshed")
	return nil
}

// Narrate explains a single observation that is not part of the dataset.
func (s *Service) Narrate(obs Observation) Story {
	return s.narrator.Explain(obs)
}

// NarrateAll pairs each observation with its story. Each row is narrated on
// its own; the output order matches the input.
func (s *Service) NarrateAll(observations []Observation) []Row {
	rows := make([]Row, len(observations))
	for i, obs := range observations {
		rows[i] = Row{
			Observation: obs,
			Story:       s.narrator.Explain(obs).Text,
		}
	}
	return rows
}

// Dataset returns the latest snapshot.
func (s *Service) Dataset() (Dataset, error) {
	return s.store.Latest()
}

// History returns retained snapshots, oldest first.
func (s *Service) History() []Dataset {
	return s.store.History()
}

// Rows returns the latest rows restricted to cities (all when empty).
func (s *Service) Rows(cities []string) ([]Row, error) {
	ds, err := s.store.Latest()
	if err != nil {
		return nil, err
	}
	return FilterByCities(ds.Rows, cities), nil
}

// Cities lists the cities present in the latest snapshot.
func (s *Service) Cities() ([]string, error) {
	ds, err := s.store.Latest()
	if err != nil {
		return nil, err
	}
	return Cities(ds.Rows), nil
}

// DailyMeans aggregates the selected rows per date and city.
func (s *Service) DailyMeans(cities []string) ([]DailyMean, error) {
	rows, err := s.Rows(cities)
	if err != nil {
		return nil, err
	}
	return DailyMeans(rows), nil
}

// ConditionMeans aggregates the selected rows per city and condition.
func (s *Service) ConditionMeans(cities []string) ([]ConditionMean, error) {
	rows, err := s.Rows(cities)
	if err != nil {
		return nil, err
	}
	return ConditionMeans(rows), nil
}

// Heatmap pivots the selected rows into a city × date matrix.
func (s *Service) Heatmap(cities []string, metric Metric) (Heatmap, error) {
	rows, err := s.Rows(cities)
	if err != nil {
		return Heatmap{}, err
	}
	return BuildHeatmap(rows, metric), nil
}

// Series builds per-city line chart data for the selected rows.
func (s *Service) Series(cities []string, metric Metric) ([]CitySeries, error) {
	rows, err := s.Rows(cities)
	if err != nil {
		return nil, err
	}
	return BuildSeries(rows, metric), nil
}
