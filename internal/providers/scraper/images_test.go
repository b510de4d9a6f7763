package scraper

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!doctype html>
<html>
<head>
  <meta property="og:image" content="/media/catalog/product/kettle-main.jpg">
  <meta name="twitter:image" content="https://cdn.shop.example.com/kettle-1200x1200.jpg">
  <link rel="image_src" href="//cdn.shop.example.com/kettle-share.png">
</head>
<body>
  <img src="/static/LOGO-header.svg" alt="Shop">
  <img src="https://cdn.shop.example.com/icons/cart.png">
  <img data-src="/media/gallery/kettle-zoom.webp" src="data:image/gif;base64,R0lGOD">
  <img srcset="/media/kettle-small.jpg 320w, /media/kettle-large.jpg 1024w">
  <img src="/media/catalog/product/kettle-main.jpg">
  <img src="javascript:void(0)">
</body>
</html>`

func TestExtractImageCandidates(t *testing.T) {
	base, err := url.Parse("https://shop.example.com/p/kettle")
	require.NoError(t, err)

	got := ExtractImageCandidates(productPage, base)

	assert.Equal(t, []string{
		"https://shop.example.com/media/catalog/product/kettle-main.jpg",
		"https://cdn.shop.example.com/kettle-1200x1200.jpg",
		"https://cdn.shop.example.com/kettle-share.png",
		"https://shop.example.com/static/LOGO-header.svg",
		"https://cdn.shop.example.com/icons/cart.png",
		"https://shop.example.com/media/gallery/kettle-zoom.webp",
		"https://shop.example.com/media/kettle-small.jpg",
	}, got)
}

func TestFilterImageCandidates(t *testing.T) {
	urls := []string{
		"https://a.example.com/LOGO.png",
		"https://a.example.com/img/Icon-cart.png",
		"https://a.example.com/sprites/SPRITE.png",
		"https://a.example.com/hero-Banner.jpg",
		"https://a.example.com/users/avatar/1.jpg",
		"https://a.example.com/product/1.jpg",
	}

	got := FilterImageCandidates(urls, DefaultImageDenylist)
	assert.Equal(t, []string{"https://a.example.com/product/1.jpg"}, got)

	for _, u := range got {
		for _, d := range DefaultImageDenylist {
			assert.NotContains(t, u, d)
		}
	}
}

func TestFilterImageCandidatesCustomDenylist(t *testing.T) {
	urls := []string{"https://a.example.com/placeholder.png", "https://a.example.com/logo.png"}

	assert.Equal(t, []string{"https://a.example.com/logo.png"}, FilterImageCandidates(urls, []string{" Placeholder ", ""}))
	assert.Equal(t, urls, FilterImageCandidates(urls, nil))
}

func TestScoreImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"https://x.example.com/media/product/kettle.jpg", 5},
		{"https://x.example.com/a/b.png", 2},
		{"https://x.example.com/a/b.PNG?v=3", 2},
		{"https://x.example.com/a/b.svg", -3},
		{"https://x.example.com/thumb/b.jpg", 0},
		{"https://x.example.com/a/b-1000x1000.jpg", 3},
		{"https://x.example.com/a/b.jpg?w=800", 3},
		{"https://x.example.com/a/b", 0},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreImageURL(tt.url))
		})
	}
}

func TestRankImageCandidates(t *testing.T) {
	urls := []string{
		"https://x.example.com/a.gif",
		"https://x.example.com/first.jpg",
		"https://x.example.com/second.jpg",
		"https://x.example.com/gallery/main.jpg",
	}

	ranked := RankImageCandidates(urls)
	assert.Equal(t, []string{
		"https://x.example.com/gallery/main.jpg",
		"https://x.example.com/first.jpg",
		"https://x.example.com/second.jpg",
		"https://x.example.com/a.gif",
	}, ranked)

	// input untouched
	assert.Equal(t, "https://x.example.com/a.gif", urls[0])
}

func TestBestImageCandidate(t *testing.T) {
	best, ok := BestImageCandidate([]string{
		"https://x.example.com/logo-large.png",
		"https://x.example.com/p/1.jpg",
	}, DefaultImageDenylist)
	require.True(t, ok)
	assert.Equal(t, "https://x.example.com/p/1.jpg", best)

	_, ok = BestImageCandidate([]string{"https://x.example.com/icon.png"}, DefaultImageDenylist)
	assert.False(t, ok)
}
