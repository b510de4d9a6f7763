package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/tracing"
)

func get(c *Client, ctx context.Context, url string) (*resty.Response, error) {
	return c.Do(ctx, func() (*resty.Response, error) {
		return c.Request(ctx).Get(url)
	})
}

func TestDoSuccess(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(tracing.HeaderRequestID)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	c := New(Config{Name: "pages"}, metrics, zap.NewNop())

	ctx := tracing.WithRequestID(context.Background(), "req_test")
	resp, err := get(c, ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.String())
	assert.Equal(t, "req_test", gotID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamCalls.WithLabelValues("pages", "success")))
}

func TestDoClientErrorDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such product"))
	}))
	defer srv.Close()

	c := New(Config{Name: "pages", Breaker: resilience.Settings{FailureThreshold: 1}}, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := get(c, context.Background(), srv.URL)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.StatusCode)
		assert.Equal(t, "no such product", se.Body)
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestDoServerErrorsOpenBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{
		Name:    "gemini",
		Breaker: resilience.Settings{FailureThreshold: 2, Cooldown: time.Hour},
	}, nil, nil)

	for i := 0; i < 2; i++ {
		_, err := get(c, context.Background(), srv.URL)
		var se *StatusError
		require.ErrorAs(t, err, &se)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err := get(c, context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDoWithoutBreakerNeverOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{
		Name:           "pages",
		Breaker:        resilience.Settings{FailureThreshold: 1, Cooldown: time.Hour},
		DisableBreaker: true,
	}, nil, nil)
	assert.False(t, c.HasBreaker())

	for i := 0; i < 5; i++ {
		_, err := get(c, context.Background(), srv.URL)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestDoRetriesTransientFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := New(Config{Name: "pages", Retries: 2}, nil, nil)

	resp, err := get(c, context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.String())
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDoWithoutRetriesCallsOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{Name: "webhook"}, nil, nil)
	_, err := c.Do(context.Background(), func() (*resty.Response, error) {
		return c.Request(context.Background()).SetBody(map[string]string{"a": "b"}).Post(srv.URL)
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDoCancelledContext(t *testing.T) {
	c := New(Config{Name: "pages", RequestsPerSecond: 0.001}, nil, nil)

	// consume the single token
	_, _ = c.Do(context.Background(), func() (*resty.Response, error) {
		return nil, errors.New("offline")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := get(c, ctx, "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
