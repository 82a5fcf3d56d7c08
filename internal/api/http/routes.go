package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/narrator"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, vocab *narrator.Vocabulary) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		cities, err := service.Cities()
		if err != nil {
			return datasetError(err)
		}
		return c.JSON(fiber.Map{"cities": cities})
	})

	v1.Get("/observations", func(c *fiber.Ctx) error {
		rows, err := service.Rows(parseCities(c))
		if err != nil {
			return datasetError(err)
		}
		return c.JSON(fiber.Map{"count": len(rows), "rows": rows})
	})

	v1.Get("/stories", func(c *fiber.Ctx) error {
		rows, err := service.Rows(parseCities(c))
		if err != nil {
			return datasetError(err)
		}
		stories := make([]storyResponse, 0, len(rows))
		for _, r := range rows {
			stories = append(stories, storyResponse{
				City:      r.City,
				Date:      r.Date.Format(weather.DateLayout),
				Condition: r.Condition,
				Story:     r.Story,
			})
		}
		return c.JSON(fiber.Map{"stories": stories})
	})

	v1.Post("/narrate", func(c *fiber.Ctx) error {
		var req narrateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.Narrate(req.toObservation()))
	})

	v1.Get("/stats/daily", func(c *fiber.Ctx) error {
		means, err := service.DailyMeans(parseCities(c))
		if err != nil {
			return datasetError(err)
		}
		return c.JSON(fiber.Map{"daily": means})
	})

	v1.Get("/stats/conditions", func(c *fiber.Ctx) error {
		means, err := service.ConditionMeans(parseCities(c))
		if err != nil {
			return datasetError(err)
		}
		return c.JSON(fiber.Map{"conditions": means})
	})

	v1.Get("/heatmap", func(c *fiber.Ctx) error {
		var q chartQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		hm, err := service.Heatmap(q.Cities, weather.Metric(q.Metric))
		if err != nil {
			return datasetError(err)
		}
		return c.JSON(hm)
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		var q chartQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		series, err := service.Series(q.Cities, weather.Metric(q.Metric))
		if err != nil {
			return datasetError(err)
		}
		return c.JSON(fiber.Map{"metric": q.Metric, "series": series})
	})

	v1.Get("/datasets", func(c *fiber.Ctx) error {
		history := service.History()
		out := make([]datasetResponse, 0, len(history))
		for _, ds := range history {
			out = append(out, datasetResponse{
				Version:  ds.Version,
				Source:   ds.Source,
				LoadedAt: ds.LoadedAt,
				Rows:     len(ds.Rows),
			})
		}
		return c.JSON(fiber.Map{"datasets": out})
	})

	v1.Get("/vocabulary", func(c *fiber.Ctx) error {
		sets := make(map[string][]string)
		for _, name := range vocab.Sets() {
			sets[name] = vocab.Members(name)
		}
		resp := fiber.Map{
			"version": vocab.Version(),
			"sets":    sets,
		}
		if label := c.Query("condition"); label != "" {
			memberOf := vocab.Classify(label)
			if memberOf == nil {
				memberOf = []string{}
			}
			resp["condition"] = fiber.Map{"label": label, "sets": memberOf}
		}
		return c.JSON(resp)
	})
}

// datasetError maps service errors to HTTP errors.
func datasetError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no weather dataset loaded yet")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather dataset")
}

// parseCities reads the city selection. No selection means every city.
func parseCities(c *fiber.Ctx) []string {
	return common.SplitList(c.Query("cities", c.Query("city")))
}

type storyResponse struct {
	City      string `json:"city"`
	Date      string `json:"date"`
	Condition string `json:"condition"`
	Story     string `json:"story"`
}

type datasetResponse struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Rows     int       `json:"rows"`
}

// chartQuery holds query parameters for heatmap and series endpoints.
type chartQuery struct {
	Cities []string
	Metric string `validate:"oneof=temp_max temp_min precipitation"`
}

func (q *chartQuery) bind(c *fiber.Ctx) error {
	q.Cities = parseCities(c)
	q.Metric = c.Query("metric", string(weather.MetricTempMax))
	return validate.Struct(q)
}

// narrateRequest is the body of POST /narrate.
type narrateRequest struct {
	City          string   `json:"city" validate:"required"`
	Date          string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	TempMax       *float64 `json:"temp_max" validate:"required"`
	TempMin       float64  `json:"temp_min"`
	Precipitation float64  `json:"precipitation" validate:"gte=0"`
	Condition     string   `json:"condition"`
}

func (r narrateRequest) toObservation() weather.Observation {
	obs := weather.Observation{
		City:          r.City,
		TempMax:       *r.TempMax,
		TempMin:       r.TempMin,
		Precipitation: r.Precipitation,
		Condition:     r.Condition,
	}
	if d, err := time.Parse(weather.DateLayout, r.Date); err == nil {
		obs.Date = d
	}
	return obs
}
