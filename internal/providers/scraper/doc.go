// Package scraper fetches product pages and turns them into generation input.
//
// This package is organized into specialized modules:
//   - fetch: page download with size limits and redirect tracking
//   - html: charset detection and decoding, parsing helpers
//   - clean: body extraction and markup stripping into plain prose
//   - images: image candidate extraction, denylist filtering and scoring
//   - imagedata: image download, MIME sniffing, resizing, data URIs
//
// Built on specialized libraries:
//   - goquery: CSS selection of <img> elements
//   - htmlquery: XPath lookup of social preview meta tags
//   - bluemonday: tag stripping
//   - chardet and x/net/html/charset: encoding detection
//   - mimetype: content sniffing of downloaded images
//   - x/image: resizing and WebP decoding
//
// Fetch failures never surface as errors from FetchProductContent: an
// unreachable or malformed page yields an empty string and the caller
// decides what an empty page means.
//
// Example Usage:
//
//	fetcher := scraper.NewFetcher(pages, scraper.FetcherOptions{}, logger)
//	text := fetcher.FetchProductContent(ctx, "https://shop.example.com/p/1")
package scraper
