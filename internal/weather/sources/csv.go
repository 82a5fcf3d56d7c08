package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Column names of the dataset, with English aliases.
var columnAliases = map[string]string{
	"data":          "date",
	"date":          "date",
	"cidade":        "city",
	"city":          "city",
	"temp_max":      "temp_max",
	"temp_min":      "temp_min",
	"precipitacao":  "precipitation",
	"precipitação":  "precipitation",
	"precipitation": "precipitation",
	"condicao":      "condition",
	"condição":      "condition",
	"condition":     "condition",
}

var requiredColumns = []string{"date", "city", "temp_max", "temp_min", "precipitation", "condition"}

var dateLayouts = []string{weather.DateLayout, time.RFC3339, weather.DisplayDateLayout, "2006-01-02 15:04:05"}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// DecodeCSV reads observations from a CSV with a header row. Columns are
// matched by name, case-insensitively, in any order. Extra columns are
// ignored.
func DecodeCSV(r io.Reader) ([]weather.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			idx[canonical] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var out []weather.Observation
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		obs, err := parseRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

func parseRecord(record []string, idx map[string]int) (weather.Observation, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[idx[col]])
	}

	city := field("city")
	if city == "" {
		return weather.Observation{}, errors.New("empty city")
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return weather.Observation{}, err
	}

	tmax, err := parseNumber("temp_max", field("temp_max"))
	if err != nil {
		return weather.Observation{}, err
	}
	tmin, err := parseNumber("temp_min", field("temp_min"))
	if err != nil {
		return weather.Observation{}, err
	}
	precip, err := parseNumber("precipitation", field("precipitation"))
	if err != nil {
		return weather.Observation{}, err
	}
	if precip < 0 {
		return weather.Observation{}, fmt.Errorf("negative precipitation %v", precip)
	}

	return weather.Observation{
		City:          city,
		Date:          date,
		TempMax:       tmax,
		TempMin:       tmin,
		Precipitation: precip,
		Condition:     field("condition"),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return weather.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseNumber accepts both "22.5" and "22,5". NaN and infinities are
// rejected since they cannot be served as JSON.
func parseNumber(col, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", col, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s %q", col, s)
	}
	return v, nil
}
