package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/tracing"
)

// Config describes one upstream.
type Config struct {
	// Name labels logs, metrics and the breaker.
	Name string
	// BaseURL is optional; requests may use absolute URLs.
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Retries is the number of transport level retries. Keep it at zero
	// for calls that must not be repeated.
	Retries int
	// RequestsPerSecond limits outbound calls; zero means unlimited.
	RequestsPerSecond float64
	Breaker           resilience.Settings
	// DisableBreaker skips circuit breaking. Set it for clients that talk
	// to caller supplied hosts, where one host failing says nothing about
	// the next.
	DisableBreaker bool
}

// Client wraps resty with rate limiting, an optional circuit breaker,
// retries, request ID propagation and metrics.
type Client struct {
	name    string
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// New creates a client for one upstream. metrics may be nil.
func New(cfg Config, metrics *monitoring.Metrics, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("upstream", cfg.Name))

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "PostGen/1.0"
	}

	httpClient := &http.Client{}
	if cfg.Retries > 0 {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = cfg.Retries
		retryClient.RetryWaitMin = 500 * time.Millisecond
		retryClient.RetryWaitMax = 5 * time.Second
		retryClient.Logger = leveledLogger{logger.Sugar()}
		// hand the final response back to the caller instead of an error
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
		httpClient = retryClient.StandardClient()
	}

	r := resty.NewWithClient(httpClient).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)
	if cfg.BaseURL != "" {
		r.SetBaseURL(cfg.BaseURL)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	c := &Client{
		name:    cfg.Name,
		resty:   r,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
	if cfg.DisableBreaker {
		return c
	}

	settings := cfg.Breaker
	userHook := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		if metrics != nil {
			metrics.SetBreakerState(name, int(to))
		}
		if userHook != nil {
			userHook(name, from, to)
		}
	}

	c.breaker = resilience.New(cfg.Name, settings)
	return c
}

// Name returns the upstream name
func (c *Client) Name() string {
	return c.name
}

// Resty exposes the underlying client for tests.
func (c *Client) Resty() *resty.Client {
	return c.resty
}

// HasBreaker reports whether calls go through a circuit breaker.
func (c *Client) HasBreaker() bool {
	return c.breaker != nil
}

// BreakerState returns the current circuit breaker state. Clients without
// a breaker always report closed.
func (c *Client) BreakerState() resilience.State {
	if c.breaker == nil {
		return resilience.StateClosed
	}
	return c.breaker.State()
}

// Request creates a request bound to ctx carrying the request ID headers.
func (c *Client) Request(ctx context.Context) *resty.Request {
	req := c.resty.R().SetContext(ctx)
	tracing.Inject(ctx, func(k, v string) { req.SetHeader(k, v) })
	return req
}

// Do runs send through the limiter and, when enabled, the breaker.
// Transport errors and 5xx replies count against the breaker; any non-2xx
// reply is returned as a *StatusError. Responses created with SetDoNotParseResponse are returned
// unread on success and the caller must close RawBody.
func (c *Client) Do(ctx context.Context, send func() (*resty.Response, error)) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit: %w", c.name, err)
	}

	timer := monitoring.NewTimer(c.metrics, c.name)
	call := func() (*resty.Response, error) {
		resp, err := send()
		if err != nil {
			return resp, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, newStatusError(c.name, resp)
		}
		return resp, nil
	}
	var (
		resp *resty.Response
		err  error
	)
	if c.breaker != nil {
		resp, err = resilience.Do(c.breaker, call)
	} else {
		resp, err = call()
	}
	if err == nil && !resp.IsSuccess() {
		err = newStatusError(c.name, resp)
	}
	timer.Stop(monitoring.Outcome(err))

	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, wrap(c.name, err)
	}
	return resp, nil
}

type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
