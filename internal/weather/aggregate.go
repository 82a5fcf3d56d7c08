package weather

import (
	"sort"
	"time"
)

// DailyMean is the mean of every numeric column for one (date, city) pair.
type DailyMean struct {
	Date          string  `json:"date"`
	City          string  `json:"city"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	Precipitation float64 `json:"precipitation"`
	Samples       int     `json:"samples"`
}

// ConditionMean is the mean of every numeric column for one (city, condition) pair.
type ConditionMean struct {
	City          string  `json:"city"`
	Condition     string  `json:"condition"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	Precipitation float64 `json:"precipitation"`
	Samples       int     `json:"samples"`
}

// Heatmap is a city × date matrix of metric means. Cells with no data are nil.
type Heatmap struct {
	Metric Metric       `json:"metric"`
	Cities []string     `json:"cities"`
	Dates  []string     `json:"dates"`
	Values [][]*float64 `json:"values"`
}

// SeriesPoint is one day of a line chart.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// CitySeries is one line of a line chart.
type CitySeries struct {
	City   string        `json:"city"`
	Points []SeriesPoint `json:"points"`
}

// accumulator sums the three numeric columns.
type accumulator struct {
	tempMax, tempMin, precip float64
	n                        int
}

func (a *accumulator) add(o Observation) {
	a.tempMax += o.TempMax
	a.tempMin += o.TempMin
	a.precip += o.Precipitation
	a.n++
}

func (a accumulator) means() (float64, float64, float64) {
	n := float64(a.n)
	return a.tempMax / n, a.tempMin / n, a.precip / n
}

// FilterByCities keeps rows whose city is selected. An empty selection keeps
// everything. The input slice is never modified.
func FilterByCities(rows []Row, cities []string) []Row {
	if len(cities) == 0 {
		return rows
	}

	selected := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		selected[c] = struct{}{}
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if _, ok := selected[r.City]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Cities returns the distinct cities in rows, sorted.
func Cities(rows []Row) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.City] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DailyMeans groups rows by (date, city) and averages each column.
// Results are ordered by date, then city.
func DailyMeans(rows []Row) []DailyMean {
	type key struct {
		date time.Time
		city string
	}

	groups := make(map[key]*accumulator)
	var keys []key
	for _, r := range rows {
		k := key{date: Day(r.Date), city: r.City}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
			keys = append(keys, k)
		}
		acc.add(r.Observation)
	}

	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].city < keys[j].city
	})

	out := make([]DailyMean, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		tmax, tmin, precip := acc.means()
		out = append(out, DailyMean{
			Date:          k.date.Format(DateLayout),
			City:          k.city,
			TempMax:       tmax,
			TempMin:       tmin,
			Precipitation: precip,
			Samples:       acc.n,
		})
	}
	return out
}

// ConditionMeans groups rows by (city, condition) and averages each column.
// Results are ordered by city, then condition.
func ConditionMeans(rows []Row) []ConditionMean {
	type key struct {
		city, condition string
	}

	groups := make(map[key]*accumulator)
	var keys []key
	for _, r := range rows {
		k := key{city: r.City, condition: r.Condition}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
			keys = append(keys, k)
		}
		acc.add(r.Observation)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].city != keys[j].city {
			return keys[i].city < keys[j].city
		}
		return keys[i].condition < keys[j].condition
	})

	out := make([]ConditionMean, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		tmax, tmin, precip := acc.means()
		out = append(out, ConditionMean{
			City:          k.city,
			Condition:     k.condition,
			TempMax:       tmax,
			TempMin:       tmin,
			Precipitation: precip,
			Samples:       acc.n,
		})
	}
	return out
}

// BuildHeatmap pivots rows into a city × date matrix of metric means.
// Cities are sorted by name and dates chronologically.
func BuildHeatmap(rows []Row, metric Metric) Heatmap {
	type cell struct {
		sum float64
		n   int
	}

	seenCity := make(map[string]struct{})
	seenDate := make(map[time.Time]struct{})
	var cities []string
	var dates []time.Time
	cells := make(map[[2]string]*cell)

	for _, r := range rows {
		d := Day(r.Date)
		if _, ok := seenCity[r.City]; !ok {
			seenCity[r.City] = struct{}{}
			cities = append(cities, r.City)
		}
		if _, ok := seenDate[d]; !ok {
			seenDate[d] = struct{}{}
			dates = append(dates, d)
		}
		k := [2]string{r.City, d.Format(DateLayout)}
		c, ok := cells[k]
		if !ok {
			c = &cell{}
			cells[k] = c
		}
		c.sum += metric.Value(r.Observation)
		c.n++
	}

	sort.Strings(cities)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	hm := Heatmap{
		Metric: metric,
		Cities: cities,
		Dates:  make([]string, len(dates)),
		Values: make([][]*float64, len(cities)),
	}
	for j, d := range dates {
		hm.Dates[j] = d.Format(DisplayDateLayout)
	}
	for i, city := range cities {
		hm.Values[i] = make([]*float64, len(dates))
		for j, d := range dates {
			c, ok := cells[[2]string{city, d.Format(DateLayout)}]
			if !ok {
				continue
			}
			mean := c.sum / float64(c.n)
			hm.Values[i][j] = &mean
		}
	}
	return hm
}

// BuildSeries returns one line per city with daily metric means in date order.
func BuildSeries(rows []Row, metric Metric) []CitySeries {
	byCity := make(map[string][]Row)
	for _, r := range rows {
		byCity[r.City] = append(byCity[r.City], r)
	}

	cities := make([]string, 0, len(byCity))
	for c := range byCity {
		cities = append(cities, c)
	}
	sort.Strings(cities)

	out := make([]CitySeries, 0, len(cities))
	for _, city := range cities {
		means := DailyMeans(byCity[city])
		points := make([]SeriesPoint, 0, len(means))
		for _, m := range means {
			points = append(points, SeriesPoint{Date: m.Date, Value: metricOf(m, metric)})
		}
		out = append(out, CitySeries{City: city, Points: points})
	}
	return out
}

func metricOf(m DailyMean, metric Metric) float64 {
	switch metric {
	case MetricTempMin:
		return m.TempMin
	case MetricPrecipitation:
		return m.Precipitation
	default:
		return m.TempMax
	}
}
