// Package webhook delivers finished posts to an automation webhook such as
// a Make.com scenario.
package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
)

// HeaderDeliveryID identifies one delivery attempt.
const HeaderDeliveryID = "X-Delivery-ID"

// StatusError is a non-2xx webhook reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Client posts JSON payloads to one webhook URL.
type Client struct {
	upstream *client.Client
	url      string
	logger   *zap.Logger
}

// New creates a webhook client. The upstream client must not retry.
func New(upstream *client.Client, url string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{upstream: upstream, url: url, logger: logger}
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool {
	return c.url != ""
}

// Send posts payload as JSON and returns the decoded response body, or an
// empty object when the webhook does not answer with JSON.
func (c *Client) Send(ctx context.Context, payload any) (any, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	delivery := uuid.NewString()
	log := logging.FromContext(ctx, c.logger).With(zap.String("delivery_id", delivery))

	resp, err := c.upstream.Do(ctx, func() (*resty.Response, error) {
		return c.upstream.Request(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader(HeaderDeliveryID, delivery).
			SetBody(body).
			Post(c.url)
	})
	if err != nil {
		var se *client.StatusError
		if errors.As(err, &se) {
			log.Warn("webhook rejected delivery", zap.Int("status", se.StatusCode))
			return nil, &StatusError{StatusCode: se.StatusCode, Body: se.Body}
		}
		log.Warn("webhook delivery failed", zap.Error(err))
		return nil, err
	}

	log.Info("webhook delivered", zap.Int("status", resp.StatusCode()))
	return decodeReply(resp.Body()), nil
}

func decodeReply(body []byte) any {
	var out any
	if len(body) == 0 || sonic.Unmarshal(body, &out) != nil || out == nil {
		return map[string]any{}
	}
	return out
}
