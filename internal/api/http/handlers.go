package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostGen/backend/internal/service/generator"
)

// Generator produces posts.
type Generator interface {
	Generate(ctx context.Context, req post.GenerationRequest, progress generator.ProgressFunc) (*post.GenerationResult, error)
	Configured() bool
	Catalog() *post.Catalog
}

// Publisher forwards posts to the webhook.
type Publisher interface {
	Publish(ctx context.Context, req post.PublishRequest) (*post.PublishResult, error)
	Configured() bool
}

// Upstream exposes the breaker of an outbound client for health checks.
type Upstream interface {
	Name() string
	BreakerState() resilience.State
}

// Handlers contains all HTTP handlers
type Handlers struct {
	generator Generator
	publisher Publisher
	upstreams []Upstream
	page      *template.Template
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(gen Generator, pub Publisher, upstreams []Upstream, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		generator: gen,
		publisher: pub,
		upstreams: upstreams,
		page:      pageTemplate,
		metrics:   metrics,
		logger:    logger,
	}
}

// Root serves the browser front end
func (h *Handlers) Root(c *gin.Context) {
	catalog := h.generator.Catalog()
	c.Render(http.StatusOK, render.HTML{
		Template: h.page,
		Name:     "index.html",
		Data: pageData{
			Language:  catalog.Language(),
			Tones:     catalog.ToneOptions(),
			Platforms: catalog.PlatformOptions(),
		},
	})
}

// Health reports configuration presence and breaker states
func (h *Handlers) Health(c *gin.Context) {
	breakers := make(gin.H, len(h.upstreams))
	for _, u := range h.upstreams {
		breakers[u.Name()] = u.BreakerState().String()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"generator": gin.H{"configured": h.generator.Configured()},
		"webhook":   gin.H{"configured": h.publisher.Configured()},
		"breakers":  breakers,
	})
}

// Generate turns a product URL into a post (non-streaming)
func (h *Handlers) Generate(c *gin.Context) {
	var req post.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	res, err := h.generator.Generate(c.Request.Context(), req, nil)
	if err != nil {
		h.logFailure(c, "generate", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Publish forwards an edited post to the webhook
func (h *Handlers) Publish(c *gin.Context) {
	var req post.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	res, err := h.publisher.Publish(c.Request.Context(), req)
	if err != nil {
		h.logFailure(c, "publish", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) logFailure(c *gin.Context, op string, err error) {
	status, _ := statusFor(err)
	log := logging.FromContext(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", zap.Int("status", status), zap.Error(err))
		return
	}
	log.Info(op+" rejected", zap.Int("status", status), zap.Error(err))
}
