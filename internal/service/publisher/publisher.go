// Package publisher forwards finished posts to the publishing webhook.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/monitoring"
)

var (
	ErrMissingPostText      = errors.New("postText is required")
	ErrWebhookNotConfigured = errors.New("webhook URL is not configured")
	ErrDeliveryFailed       = errors.New("webhook delivery failed")
)

// StatusOK is the status reported after a delivered post.
const StatusOK = "OK"

// Webhook delivers payloads.
type Webhook interface {
	Configured() bool
	Send(ctx context.Context, payload any) (any, error)
}

// Publisher validates publish requests and hands them to the webhook.
type Publisher struct {
	webhook Webhook
	source  string
	metrics *monitoring.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a publisher. metrics may be nil.
func New(webhook Webhook, source string, metrics *monitoring.Metrics, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{webhook: webhook, source: source, metrics: metrics, logger: logger, now: time.Now}
}

// Configured reports whether a webhook is set.
func (p *Publisher) Configured() bool {
	return p.webhook != nil && p.webhook.Configured()
}

// Publish sends the post to the webhook and echoes its reply.
func (p *Publisher) Publish(ctx context.Context, req post.PublishRequest) (*post.PublishResult, error) {
	if strings.TrimSpace(req.PostText) == "" {
		p.record("rejected")
		return nil, ErrMissingPostText
	}
	if !p.Configured() {
		p.record("rejected")
		return nil, ErrWebhookNotConfigured
	}

	payload := post.NewPublishPayload(req, p.source, p.now())
	reply, err := p.webhook.Send(ctx, payload)
	if err != nil {
		p.record("error")
		return nil, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	p.record("success")

	logging.FromContext(ctx, p.logger).Info("post published",
		zap.String("platform", payload.Platform),
		zap.String("product_url", payload.ProductURL),
	)
	return &post.PublishResult{Status: StatusOK, WebhookResponse: reply}, nil
}

func (p *Publisher) record(outcome string) {
	if p.metrics != nil {
		p.metrics.RecordPublish(outcome)
	}
}
