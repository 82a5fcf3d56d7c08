package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type fixedNarrator struct{}

func (fixedNarrator) Explain(obs weather.Observation) weather.Story {
	return weather.Story{Text: "ok " + obs.City, Bucket: "hot", Rule: "hot/rain"}
}

type fakeSource struct {
	obs []weather.Observation
	err error
}

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) Load(context.Context) ([]weather.Observation, error) {
	return f.obs, f.err
}

func TestInstrumentNarrator(t *testing.T) {
	m := New(prometheus.NewRegistry())
	n := m.InstrumentNarrator(fixedNarrator{})

	story := n.Explain(weather.Observation{City: "Lisboa"})
	n.Explain(weather.Observation{City: "Porto"})

	assert.Equal(t, "ok Lisboa", story.Text)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stories.WithLabelValues("hot", "hot/rain")))
}

func TestInstrumentSource(t *testing.T) {
	m := New(prometheus.NewRegistry())

	ok := m.InstrumentSource(fakeSource{obs: make([]weather.Observation, 3)})
	_, err := ok.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fake", ok.Name())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rows))

	failing := m.InstrumentSource(fakeSource{err: errors.New("boom")})
	_, err = failing.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rows), "failed loads keep the last row count")

	empty := m.InstrumentSource(fakeSource{})
	_, err = empty.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rows), "empty loads keep the last row count")

	slow := m.InstrumentSource(fakeSource{err: context.DeadlineExceeded})
	_, _ = slow.Load(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("timeout")))
}
