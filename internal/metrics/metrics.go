package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const namespace = "weather_dashboard"

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	stories      *prometheus.CounterVec
	loads        *prometheus.CounterVec
	rows         prometheus.Gauge
	loadDuration prometheus.Histogram
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		stories: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stories_total",
			Help:      "Stories generated, by temperature bucket and rule.",
		}, []string{"bucket", "rule"}),
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts, by result.",
		}, []string{"result"}),
		rows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Observations in the last successfully loaded dataset.",
		}),
		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent loading the dataset.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// InstrumentNarrator counts every story by the bucket and rule that chose it.
func (m *Metrics) InstrumentNarrator(next weather.Narrator) weather.Narrator {
	return &narratorDecorator{next: next, m: m}
}

// InstrumentSource records load outcomes, latency and row counts.
func (m *Metrics) InstrumentSource(next weather.Source) weather.Source {
	return &sourceDecorator{next: next, m: m}
}

type narratorDecorator struct {
	next weather.Narrator
	m    *Metrics
}

func (d *narratorDecorator) Explain(obs weather.Observation) weather.Story {
	story := d.next.Explain(obs)
	d.m.stories.WithLabelValues(story.Bucket, story.Rule).Inc()
	return story
}

type sourceDecorator struct {
	next weather.Source
	m    *Metrics
}

func (d *sourceDecorator) Name() string {
	return d.next.Name()
}

func (d *sourceDecorator) Load(ctx context.Context) ([]weather.Observation, error) {
	timer := prometheus.NewTimer(d.m.loadDuration)
	observations, err := d.next.Load(ctx)
	timer.ObserveDuration()

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		d.m.loads.WithLabelValues("timeout").Inc()
	case err != nil:
		d.m.loads.WithLabelValues("error").Inc()
	default:
		d.m.loads.WithLabelValues("success").Inc()
		// empty results are rejected upstream and the old rows stay served
		if len(observations) > 0 {
			d.m.rows.Set(float64(len(observations)))
		}
	}
	return observations, err
}
