package client

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/resilience"
)

const maxErrorBody = 512

// ErrUnavailable wraps breaker rejections.
var ErrUnavailable = errors.New("upstream unavailable")

// StatusError is a non-2xx reply from an upstream.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Service, e.StatusCode, e.Body)
}

func newStatusError(service string, resp *resty.Response) *StatusError {
	body := resp.Body()
	if len(body) == 0 && resp.RawBody() != nil {
		// unparsed response
		body, _ = io.ReadAll(io.LimitReader(resp.RawBody(), maxErrorBody))
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{Service: service, StatusCode: resp.StatusCode(), Body: string(body)}
}

func wrap(service string, err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %w", service, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", service, err)
}
