package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/PostGen/backend/internal/shared/id"
	"go.uber.org/zap"
)

// Propagation headers.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderSpanID    = "X-Span-ID"
)

// Span is one timed operation within a request
type Span struct {
	RequestID string
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
	Duration  time.Duration
	Tags      map[string]string
	Err       error
	Status    int
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// SetError records an error on the span
func (s *Span) SetError(err error) {
	s.Err = err
}

// Tracer creates spans and logs them asynchronously
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	wg      sync.WaitGroup
	once    sync.Once
}

// New creates a tracer and starts its collector
func New(service string, logger *zap.Logger) *Tracer {
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, 1000),
	}
	t.wg.Add(1)
	go t.collect()
	return t
}

// StartSpan opens a span as a child of whatever span ctx carries.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	reqID := RequestID(ctx)
	if reqID == "" {
		reqID = id.NewRequestID().String()
		ctx = WithRequestID(ctx, reqID)
	}

	span := &Span{
		RequestID: reqID,
		SpanID:    id.Default().New().String(),
		ParentID:  spanID(ctx),
		Name:      name,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}
	return span, context.WithValue(ctx, spanIDKey, span.SpanID)
}

// End finishes span with err and hands it to the collector.
func (t *Tracer) End(span *Span, err error) {
	span.Duration = time.Since(span.StartTime)
	if err != nil {
		span.Err = err
	}
	t.Submit(span)
}

// Submit queues a finished span, dropping it when the buffer is full.
func (t *Tracer) Submit(span *Span) {
	defer func() {
		// send on closed channel after Close
		_ = recover()
	}()
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("request_id", span.RequestID),
			zap.String("operation", span.Name),
		)
	}
}

// Close drains queued spans.
func (t *Tracer) Close() {
	t.once.Do(func() { close(t.spans) })
	t.wg.Wait()
}

func (t *Tracer) collect() {
	defer t.wg.Done()
	for span := range t.spans {
		t.log(span)
	}
}

func (t *Tracer) log(span *Span) {
	fields := []zap.Field{
		zap.String("request_id", span.RequestID),
		zap.String("span_id", span.SpanID),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", t.service),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", span.ParentID))
	}
	if span.Status != 0 {
		fields = append(fields, zap.Int("status", span.Status))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Err != nil {
		t.logger.Warn("span completed with error", append(fields, zap.Error(span.Err))...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	spanIDKey    contextKey = "span_id"
)

// WithRequestID stores a request ID on ctx
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// RequestID returns the request ID carried by ctx, or ""
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func spanID(ctx context.Context) string {
	v, _ := ctx.Value(spanIDKey).(string)
	return v
}

// Inject writes propagation headers for an outbound call.
func Inject(ctx context.Context, set func(key, value string)) {
	if reqID := RequestID(ctx); reqID != "" {
		set(HeaderRequestID, reqID)
	}
	if sid := spanID(ctx); sid != "" {
		set(HeaderSpanID, sid)
	}
}
