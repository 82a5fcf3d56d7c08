package weather

import (
	"time"
)

// DateLayout is the calendar date format used in JSON and query parameters.
const DateLayout = "2006-01-02"

// DisplayDateLayout is the day-first format used for heatmap columns.
const DisplayDateLayout = "02/01/2006"

// Observation is one day of weather for one city, as read from the dataset.
// Observations are never mutated after loading.
type Observation struct {
	City          string    `json:"city"`
	Date          time.Time `json:"date"`
	TempMax       float64   `json:"temp_max"`
	TempMin       float64   `json:"temp_min"`
	Precipitation float64   `json:"precipitation"`
	Condition     string    `json:"condition"`
}

// Row is an observation together with its generated story.
type Row struct {
	Observation
	Story string `json:"story"`
}

// Dataset is an immutable snapshot of everything loaded from a source.
type Dataset struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"` // always UTC
	Rows     []Row     `json:"-"`
}

// Metric selects which numeric column an aggregate reads.
type Metric string

const (
	MetricTempMax       Metric = "temp_max"
	MetricTempMin       Metric = "temp_min"
	MetricPrecipitation Metric = "precipitation"
)

// Value extracts the metric from an observation.
func (m Metric) Value(o Observation) float64 {
	switch m {
	case MetricTempMin:
		return o.TempMin
	case MetricPrecipitation:
		return o.Precipitation
	default:
		return o.TempMax
	}
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
