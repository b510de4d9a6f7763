package scraper

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// DefaultImageDenylist marks URLs that are page chrome rather than product
// photos.
var DefaultImageDenylist = []string{"logo", "icon", "sprite", "banner", "avatar"}

const metaImageXPath = `//meta[@property='og:image' or @name='og:image' or @property='og:image:secure_url' or @property='og:image:url'` +
	` or @name='twitter:image' or @property='twitter:image' or @name='twitter:image:src']`

var (
	productKeywords = []string{"product", "main", "zoom", "large", "gallery", "original"}
	smallKeywords   = []string{"thumb", "small", "mini"}
	photoExts       = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	poorExts        = map[string]bool{".svg": true, ".gif": true}

	dimsPattern  = regexp.MustCompile(`(\d{3,4})x(\d{3,4})`)
	widthPattern = regexp.MustCompile(`[?&/_,](?:w|width|wid)[=_](\d{3,4})`)
)

// ExtractImageCandidates lists image URLs found on a page in document
// order: social preview images first, then every <img>. URLs are resolved
// against base and deduplicated.
func ExtractImageCandidates(doc string, base *url.URL) []string {
	var raw []string

	if node, err := LoadNode(doc); err == nil {
		for _, n := range htmlquery.Find(node, metaImageXPath) {
			raw = append(raw, htmlquery.SelectAttr(n, "content"))
		}
		for _, n := range htmlquery.Find(node, `//link[@rel='image_src']`) {
			raw = append(raw, htmlquery.SelectAttr(n, "href"))
		}
	}

	if d, err := LoadDocument(doc); err == nil {
		d.Find("img").Each(func(_ int, s *goquery.Selection) {
			for _, attr := range []string{"src", "data-src", "data-original", "data-lazy-src"} {
				if v, ok := s.Attr(attr); ok {
					raw = append(raw, v)
				}
			}
			if srcset, ok := s.Attr("srcset"); ok {
				raw = append(raw, firstSrcsetURL(srcset))
			}
		})
	}

	out := make([]string, 0, len(raw))
	for _, ref := range raw {
		if u, ok := resolveImageURL(ref, base); ok {
			out = append(out, u)
		}
	}
	return Deduplicate(out)
}

func firstSrcsetURL(srcset string) string {
	first := strings.TrimSpace(strings.Split(srcset, ",")[0])
	if fields := strings.Fields(first); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func resolveImageURL(ref string, base *url.URL) (string, bool) {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	if ref == "" || strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "javascript:") {
		return "", false
	}
	if strings.HasPrefix(ref, "//") {
		ref = "https:" + ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// FilterImageCandidates drops every URL containing a denylisted substring,
// compared case-insensitively.
func FilterImageCandidates(urls, denylist []string) []string {
	deny := make([]string, 0, len(denylist))
	for _, d := range denylist {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			deny = append(deny, d)
		}
	}

	out := make([]string, 0, len(urls))
next:
	for _, u := range urls {
		lower := strings.ToLower(u)
		for _, d := range deny {
			if strings.Contains(lower, d) {
				continue next
			}
		}
		out = append(out, u)
	}
	return out
}

// ScoreImageURL rates how likely a URL is to be the main product photo.
func ScoreImageURL(raw string) int {
	lower := strings.ToLower(raw)
	score := 0

	for _, k := range productKeywords {
		if strings.Contains(lower, k) {
			score += 3
			break
		}
	}
	for _, k := range smallKeywords {
		if strings.Contains(lower, k) {
			score -= 2
			break
		}
	}

	p := lower
	if u, err := url.Parse(lower); err == nil {
		p = u.Path
	}
	switch ext := path.Ext(p); {
	case photoExts[ext]:
		score += 2
	case poorExts[ext]:
		score -= 3
	}

	if largestDimension(lower) >= 500 {
		score++
	}
	return score
}

func largestDimension(s string) int {
	best := 0
	for _, m := range dimsPattern.FindAllStringSubmatch(s, -1) {
		for _, g := range m[1:] {
			if n, _ := strconv.Atoi(g); n > best {
				best = n
			}
		}
	}
	for _, m := range widthPattern.FindAllStringSubmatch(s, -1) {
		if n, _ := strconv.Atoi(m[1]); n > best {
			best = n
		}
	}
	return best
}

// RankImageCandidates orders URLs by descending score. Ties keep their
// original order.
func RankImageCandidates(urls []string) []string {
	ranked := append([]string(nil), urls...)
	scores := make(map[string]int, len(ranked))
	for _, u := range ranked {
		scores[u] = ScoreImageURL(u)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	return ranked
}

// BestImageCandidate filters, ranks and returns the top URL.
func BestImageCandidate(urls, denylist []string) (string, bool) {
	ranked := RankImageCandidates(FilterImageCandidates(urls, denylist))
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0], true
}
