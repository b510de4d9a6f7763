package generator

import (
	"context"
	"encoding/base64"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/scraper"
	"github.com/GriffinCanCode/PostGen/backend/internal/shared/id"
)

// acquireImage applies the configured strategy. It returns nil and
// ImageNone when no image could be produced.
func (g *Generator) acquireImage(ctx context.Context, draft post.Draft, content string, page *scraper.Page) (*string, post.ImageSource) {
	var (
		uri    string
		source post.ImageSource
	)
	switch g.opts.Strategy {
	case config.ImageStrategyNone:
		return nil, post.ImageNone
	case config.ImageStrategyGenerate:
		uri, source = g.generateImage(ctx, draft, content), post.ImageGenerated
	case config.ImageStrategyScrape:
		uri, source = g.scrapeImage(ctx, page), post.ImageScraped
	default:
		uri, source = g.generateImage(ctx, draft, content), post.ImageGenerated
		if uri == "" {
			uri, source = g.scrapeImage(ctx, page), post.ImageScraped
		}
	}
	if uri == "" {
		return nil, post.ImageNone
	}

	if hosted, ok := g.rehost(ctx, uri); ok {
		return &hosted, post.ImageHosted
	}
	return &uri, source
}

func (g *Generator) generateImage(ctx context.Context, draft post.Draft, content string) string {
	log := logging.FromContext(ctx, g.deps.Logger)

	prompt, err := g.deps.Catalog.BuildImagePrompt(draft.Title, content)
	if err != nil {
		log.Warn("image prompt failed", zap.Error(err))
		return ""
	}
	mime, data, err := g.deps.Model.GenerateImage(ctx, prompt)
	if err != nil {
		log.Warn("image generation failed", zap.Error(err))
		return ""
	}
	uri := "data:" + mime + ";base64," + data
	if g.opts.MaxWidth <= 0 {
		return uri
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		log.Debug("generated image is not valid base64, passing through", zap.Error(err))
		return uri
	}
	small, smallMime, err := scraper.Downscale(raw, mime, g.opts.MaxWidth)
	if err != nil {
		log.Debug("generated image downscale failed, passing through", zap.Error(err))
		return uri
	}
	return scraper.EncodeDataURI(smallMime, small)
}

func (g *Generator) scrapeImage(ctx context.Context, page *scraper.Page) string {
	if page == nil || g.deps.Images == nil {
		return ""
	}
	log := logging.FromContext(ctx, g.deps.Logger)

	candidates := scraper.ExtractImageCandidates(page.HTML, page.URL)
	ranked := scraper.RankImageCandidates(scraper.FilterImageCandidates(candidates, g.opts.Denylist))
	if len(ranked) == 0 {
		log.Debug("no image candidates on page", zap.Int("found", len(candidates)))
		return ""
	}

	uri, src, err := g.deps.Images.FirstDataURI(ctx, ranked, g.opts.MaxAttempts)
	if err != nil {
		log.Warn("image scraping failed", zap.Int("candidates", len(ranked)), zap.Error(err))
		return ""
	}
	log.Debug("scraped image selected", zap.String("url", src))
	return uri
}

// rehost uploads a data URI image and returns its public URL.
func (g *Generator) rehost(ctx context.Context, uri string) (string, bool) {
	if g.deps.Host == nil || !g.deps.Host.Configured() {
		return "", false
	}
	log := logging.FromContext(ctx, g.deps.Logger)

	_, data, err := scraper.DecodeDataURI(uri)
	if err != nil {
		log.Warn("image is not a data URI", zap.Error(err))
		return "", false
	}
	hosted, err := g.deps.Host.Upload(ctx, id.NewGenerationID().String(), data)
	if err != nil {
		log.Warn("image upload failed, keeping data URI", zap.Error(err))
		return "", false
	}
	return hosted, true
}
