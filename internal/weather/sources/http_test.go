package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestHTTPSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL, testBackoff())
	obs, err := src.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, obs, 3)
	assert.Equal(t, "http:"+srv.URL, src.Name())
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL, testBackoff())
	obs, err := src.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, obs, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPSource_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL, testBackoff())
	_, err := src.Load(context.Background())

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPSource_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL, testBackoff())
	_, err := src.Load(context.Background())

	assert.ErrorIs(t, err, ErrUnexpected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPSource_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewHTTPSource(srv.Client(), srv.URL, testBackoff())
	_, err := src.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource_InvalidConfig(t *testing.T) {
	src := NewHTTPSource(nil, "http://example.invalid", testBackoff())
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, errNoHTTPClient)

	src = NewHTTPSource(http.DefaultClient, "http://example.invalid", BackoffConfig{})
	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestBackoffDelay(t *testing.T) {
	cfg := BackoffConfig{InitialInterval: 100 * time.Millisecond, MaxInterval: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, backoffDelay(cfg, 0))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(cfg, 1))
	assert.Equal(t, 300*time.Millisecond, backoffDelay(cfg, 2))
}
