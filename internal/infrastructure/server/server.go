package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/PostGen/backend/internal/api/http"
	"github.com/GriffinCanCode/PostGen/backend/internal/api/middleware"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	http     *http.Server
	services *Services
	tracer   *tracing.Tracer
	logger   *logging.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	logger.Info("Initializing PostGen server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("image_strategy", cfg.Images.Strategy),
		zap.Bool("gemini_configured", cfg.Gemini.APIKey != ""),
		zap.Bool("webhook_configured", cfg.Webhook.URL != ""),
		zap.Bool("imagehost_configured", cfg.ImageHost.APIKey != ""),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	tracer := tracing.New("postgen", logger.Component("tracing"))

	services, err := NewServices(cfg, metrics, tracer, logger.Logger)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer, logger.Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	upstreams := make([]api.Upstream, 0, len(services.Upstreams))
	for _, u := range services.Upstreams {
		upstreams = append(upstreams, u)
	}
	handlers := api.NewHandlers(services.Generator, services.Publisher, upstreams, metrics, logger.Component("api"))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{DisableCompression: true})))

	// rate limited: these fan out to paid APIs
	apiGroup := router.Group("/api")
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		apiGroup.Use(middleware.RateLimit(rl))
	}
	apiGroup.POST("/generate", middleware.BodyLimit(cfg.Server.MaxBodyBytes), handlers.Generate)
	apiGroup.GET("/generate/stream", handlers.Stream)
	// publish may carry the generated image inline as a data URI
	apiGroup.POST("/publish", middleware.BodyLimit(cfg.PublishBodyLimit()), handlers.Publish)

	logger.Info("Server initialized successfully")

	return &Server{
		services: services,
		tracer:   tracer,
		logger:   logger,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           compress(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the root HTTP handler including compression.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Services returns the pipeline services.
func (s *Server) Services() *Services {
	return s.services
}

// Run starts the HTTP server and blocks until it is shut down.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	err := s.http.Shutdown(ctx)
	s.tracer.Close()
	s.logger.Sync()
	return err
}

// compress gzips responses except WebSocket upgrades.
func compress(h http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			h.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}
