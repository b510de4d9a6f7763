package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
)

const (
	// DefaultMaxContentChars is the text budget handed to the prompt.
	DefaultMaxContentChars = 2000
	// DefaultMaxBodyBytes limits how much of a page is read.
	DefaultMaxBodyBytes = 5 * 1024 * 1024
)

var (
	ErrInvalidURL   = errors.New("invalid product URL")
	ErrPageTooLarge = errors.New("page exceeds size limit")
)

// Page is a fetched product page decoded to UTF-8.
type Page struct {
	URL  *url.URL
	HTML string
}

// Fetcher downloads product pages.
type Fetcher struct {
	client          *client.Client
	maxBodyBytes    int64
	maxContentChars int
	logger          *zap.Logger
}

// FetcherOptions tunes a Fetcher. Zero values take the defaults.
type FetcherOptions struct {
	MaxBodyBytes    int64
	MaxContentChars int
}

// NewFetcher creates a page fetcher on top of an upstream client.
func NewFetcher(c *client.Client, opts FetcherOptions, logger *zap.Logger) *Fetcher {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxContentChars <= 0 {
		opts.MaxContentChars = DefaultMaxContentChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:          c,
		maxBodyBytes:    opts.MaxBodyBytes,
		maxContentChars: opts.MaxContentChars,
		logger:          logger,
	}
}

// ParseURL accepts absolute http and https URLs only.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// FetchPage downloads and decodes a page. The returned URL is the final one
// after redirects.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(ctx, func() (*resty.Response, error) {
		return f.client.Request(ctx).
			SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
			SetDoNotParseResponse(true).
			Get(u.String())
	})
	if err != nil {
		return nil, err
	}
	defer resp.RawBody().Close()

	body, err := io.ReadAll(io.LimitReader(resp.RawBody(), f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, ErrPageTooLarge
	}

	final := u
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL
	}

	return &Page{
		URL:  final,
		HTML: DecodeHTML(body, resp.Header().Get("Content-Type")),
	}, nil
}

// FetchProductContent returns the cleaned text of a product page, or ""
// when the page cannot be fetched for any reason.
func (f *Fetcher) FetchProductContent(ctx context.Context, rawURL string) string {
	_, content := f.FetchProduct(ctx, rawURL)
	return content
}

// FetchProduct returns the page and its cleaned text. Failures are logged
// and yield a nil page and "".
func (f *Fetcher) FetchProduct(ctx context.Context, rawURL string) (*Page, string) {
	page, err := f.FetchPage(ctx, rawURL)
	if err != nil {
		logging.FromContext(ctx, f.logger).Warn("product page fetch failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return nil, ""
	}
	return page, f.Clean(page)
}

// Clean applies the content budget to a fetched page.
func (f *Fetcher) Clean(page *Page) string {
	return CleanText(page.HTML, f.maxContentChars)
}
