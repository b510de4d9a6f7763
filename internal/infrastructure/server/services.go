package server

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/gemini"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/imagehost"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/scraper"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/webhook"
	"github.com/GriffinCanCode/PostGen/backend/internal/service/generator"
	"github.com/GriffinCanCode/PostGen/backend/internal/service/publisher"
)

// Services holds the pipeline services and the breaker guarded upstreams
// reported by the health endpoint.
type Services struct {
	Generator *generator.Generator
	Publisher *publisher.Publisher
	Upstreams []*client.Client
}

// upstreams are the outbound clients. Page and image GETs target whatever
// host the caller supplied, so they carry no breaker; every fixed API gets
// its own.
type upstreams struct {
	pages     *client.Client
	images    *client.Client
	textModel *client.Client
	imgModel  *client.Client
	host      *client.Client
	hook      *client.Client
}

func newUpstreams(cfg *config.Config, metrics *monitoring.Metrics, logger *zap.Logger) upstreams {
	newClient := func(name, baseURL string, retries int, guarded bool) *client.Client {
		return client.New(client.Config{
			Name:      name,
			BaseURL:   baseURL,
			Timeout:   cfg.Upstream.Timeout,
			UserAgent: cfg.Scraper.UserAgent,
			Retries:   retries,
			Breaker: resilience.Settings{
				FailureThreshold: uint32(cfg.Upstream.BreakerFailures),
				Cooldown:         cfg.Upstream.BreakerCooldown,
			},
			DisableBreaker: !guarded,
		}, metrics, logger)
	}

	// only idempotent GETs retry
	return upstreams{
		pages:     newClient("pages", "", cfg.Scraper.Retries, false),
		images:    newClient("images", "", cfg.Scraper.Retries, false),
		textModel: newClient("gemini-text", cfg.Gemini.BaseURL, 0, true),
		imgModel:  newClient("gemini-image", cfg.Gemini.BaseURL, 0, true),
		host:      newClient("imagehost", cfg.ImageHost.BaseURL, 0, true),
		hook:      newClient("webhook", "", 0, true),
	}
}

// guarded returns the clients that sit behind a breaker.
func (u upstreams) guarded() []*client.Client {
	var out []*client.Client
	for _, c := range []*client.Client{u.pages, u.images, u.textModel, u.imgModel, u.host, u.hook} {
		if c.HasBreaker() {
			out = append(out, c)
		}
	}
	return out
}

// NewServices builds every upstream client and service from cfg. metrics
// and tracer may be nil.
func NewServices(cfg *config.Config, metrics *monitoring.Metrics, tracer *tracing.Tracer, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := post.LoadCatalog(cfg.Prompts.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt catalog: %w", err)
	}

	up := newUpstreams(cfg, metrics, logger)

	gen := generator.New(generator.Deps{
		Catalog: catalog,
		Pages: scraper.NewFetcher(up.pages, scraper.FetcherOptions{
			MaxBodyBytes:    cfg.Scraper.MaxBodyBytes,
			MaxContentChars: cfg.Scraper.MaxContentChars,
		}, logger.Named("scraper")),
		Model: gemini.New(up.textModel, up.imgModel, gemini.Config{
			APIKey:     cfg.Gemini.APIKey,
			TextModel:  cfg.Gemini.TextModel,
			ImageModel: cfg.Gemini.ImageModel,
		}, logger.Named("gemini")),
		Images: scraper.NewImageFetcher(up.images, scraper.ImageOptions{
			MaxBytes: cfg.Images.MaxBytes,
			MaxWidth: cfg.Images.MaxWidth,
		}, logger.Named("images")),
		Host: imagehost.New(up.host, imagehost.Config{
			APIKey:     cfg.ImageHost.APIKey,
			Expiration: cfg.ImageHost.Expiration,
		}, logger.Named("imagehost")),
		Metrics: metrics,
		Tracer:  tracer,
		Logger:  logger.Named("generator"),
	}, generator.Options{
		Strategy:    cfg.Images.Strategy,
		Denylist:    cfg.Images.Denylist,
		MaxAttempts: cfg.Images.MaxAttempts,
		MaxWidth:    cfg.Images.MaxWidth,
	})

	pub := publisher.New(
		webhook.New(up.hook, cfg.Webhook.URL, logger.Named("webhook")),
		cfg.Webhook.Source,
		metrics,
		logger.Named("publisher"),
	)

	return &Services{
		Generator: gen,
		Publisher: pub,
		Upstreams: up.guarded(),
	}, nil
}
