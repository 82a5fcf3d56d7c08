package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultDatasetURL is the public forecast dataset the dashboard was built around.
const DefaultDatasetURL = "https://raw.githubusercontent.com/MarceloMFerreira/archives/refs/heads/main/previsoes_tempo.csv"

// HTTPSource implements weather.Source for a CSV served over HTTP.
type HTTPSource struct {
	name    string
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source that downloads url with retries and a circuit breaker.
func NewHTTPSource(client *http.Client, url string, backoff BackoffConfig) *HTTPSource {
	return &HTTPSource{
		name:    "http:" + url,
		url:     url,
		httpCfg: HTTPClientConfig{Client: client, Backoff: backoff},
		circuit: newBreaker("dataset-http"),
	}
}

func (s *HTTPSource) Name() string {
	return s.name
}

func (s *HTTPSource) Load(ctx context.Context) ([]weather.Observation, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	observations, err := DecodeCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.url, err)
	}
	return observations, nil
}
