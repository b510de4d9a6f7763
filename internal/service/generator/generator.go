package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/scraper"
)

var (
	ErrMissingProductURL      = errors.New("productUrl is required")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrGeneratorNotConfigured = errors.New("generation API key is not configured")
	ErrEmptyContent           = errors.New("could not fetch product content")
	ErrUpstream               = errors.New("post generation failed")
)

// Stage is a pipeline step reported to progress listeners.
type Stage string

const (
	StageFetching Stage = "fetching"
	StageWriting  Stage = "writing"
	StageImage    Stage = "image"
	StageDone     Stage = "done"
)

// ProgressFunc receives stage changes. It is called on the generating
// goroutine and must not block.
type ProgressFunc func(Stage)

// PageSource downloads product pages. A failed fetch yields a nil page and
// empty content.
type PageSource interface {
	FetchProduct(ctx context.Context, rawURL string) (*scraper.Page, string)
}

// Model writes post text and images.
type Model interface {
	Configured() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (mime, data string, err error)
}

// ImageDownloader turns ranked image URLs into a data URI.
type ImageDownloader interface {
	FirstDataURI(ctx context.Context, candidates []string, attempts int) (dataURI, source string, err error)
}

// ImageHost re-hosts images under a public URL.
type ImageHost interface {
	Configured() bool
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Options selects the image strategy.
type Options struct {
	Strategy    string
	Denylist    []string
	MaxAttempts int
	// MaxWidth downscales generated images; zero keeps them as returned.
	MaxWidth int
}

// Deps are the collaborators of a Generator. Images, Host, Metrics and
// Tracer may be nil.
type Deps struct {
	Catalog *post.Catalog
	Pages   PageSource
	Model   Model
	Images  ImageDownloader
	Host    ImageHost
	Metrics *monitoring.Metrics
	Tracer  *tracing.Tracer
	Logger  *zap.Logger
	Now     func() time.Time
}

// Generator runs the product page to post pipeline.
type Generator struct {
	deps Deps
	opts Options
}

// New creates a generator.
func New(deps Deps, opts Options) *Generator {
	if deps.Catalog == nil {
		deps.Catalog = post.DefaultCatalog()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	opts.Strategy = strings.ToLower(opts.Strategy)
	if opts.Strategy == "" {
		opts.Strategy = config.ImageStrategyAuto
	}
	if opts.Denylist == nil {
		opts.Denylist = scraper.DefaultImageDenylist
	}
	return &Generator{deps: deps, opts: opts}
}

// Catalog returns the descriptor catalog in use.
func (g *Generator) Catalog() *post.Catalog {
	return g.deps.Catalog
}

// Configured reports whether the text model can be called.
func (g *Generator) Configured() bool {
	return g.deps.Model != nil && g.deps.Model.Configured()
}

// Generate turns a product URL into a post. Image problems never fail the
// call; they leave ImageURL nil.
func (g *Generator) Generate(ctx context.Context, req post.GenerationRequest, progress ProgressFunc) (*post.GenerationResult, error) {
	start := g.deps.Now()
	if progress == nil {
		progress = func(Stage) {}
	}

	var span *tracing.Span
	if g.deps.Tracer != nil {
		span, ctx = g.deps.Tracer.StartSpan(ctx, "generate")
	}
	log := logging.FromContext(ctx, g.deps.Logger)

	result, err := g.run(ctx, req, progress)

	if span != nil {
		span.SetTag("product_url", req.ProductURL)
		if result != nil {
			span.SetTag("image_source", string(result.Meta.ImageSource))
		}
		g.deps.Tracer.End(span, err)
	}
	if g.deps.Metrics != nil {
		g.deps.Metrics.RecordGeneration(monitoring.Outcome(err), g.deps.Now().Sub(start))
		if result != nil {
			g.deps.Metrics.RecordImageSource(string(result.Meta.ImageSource))
		}
	}
	if err != nil {
		log.Warn("generation failed", zap.String("product_url", req.ProductURL), zap.Error(err))
		return nil, err
	}
	log.Info("post generated",
		zap.String("product_url", req.ProductURL),
		zap.String("tone", string(result.Meta.Tone)),
		zap.String("platform", string(result.Meta.Platform)),
		zap.String("image_source", string(result.Meta.ImageSource)),
	)
	return result, nil
}

func (g *Generator) run(ctx context.Context, req post.GenerationRequest, progress ProgressFunc) (*post.GenerationResult, error) {
	if strings.TrimSpace(req.ProductURL) == "" {
		return nil, ErrMissingProductURL
	}
	tone, err := g.deps.Catalog.ParseTone(req.Tone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	platform, err := g.deps.Catalog.ParsePlatform(req.Platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if _, err := scraper.ParseURL(req.ProductURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !g.Configured() {
		return nil, ErrGeneratorNotConfigured
	}

	progress(StageFetching)
	page, content := g.deps.Pages.FetchProduct(ctx, req.ProductURL)
	if content == "" {
		return nil, ErrEmptyContent
	}

	progress(StageWriting)
	prompt, err := g.deps.Catalog.BuildPostPrompt(content, tone, platform)
	if err != nil {
		return nil, err
	}
	raw, err := g.deps.Model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	draft := post.ParseModelOutput(raw)

	progress(StageImage)
	imageURL, source := g.acquireImage(ctx, draft, content, page)

	progress(StageDone)
	return &post.GenerationResult{
		Title:    draft.Title,
		PostText: draft.Text,
		Hashtags: draft.Hashtags,
		ImageURL: imageURL,
		Meta: post.Meta{
			Tone:        tone,
			Platform:    platform,
			GeneratedAt: g.deps.Now().UTC(),
			ImageSource: source,
			RequestID:   tracing.RequestID(ctx),
		},
	}, nil
}
