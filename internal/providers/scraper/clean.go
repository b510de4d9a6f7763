package scraper

import (
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPattern   = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	scriptPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)

	stripPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)
)

// ExtractBody returns the inner HTML of <body>, or the whole document when
// no body element is found.
func ExtractBody(doc string) string {
	if m := bodyPattern.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return doc
}

// CleanText turns an HTML document into plain prose of at most limit
// characters: body only, no scripts or styles, no tags, entities decoded,
// whitespace collapsed.
func CleanText(doc string, limit int) string {
	body := ExtractBody(doc)
	body = scriptPattern.ReplaceAllString(body, " ")
	body = stylePattern.ReplaceAllString(body, " ")

	text := stripPolicy.Sanitize(body)
	text = html.UnescapeString(text)
	return TruncateRunes(NormalizeWhitespace(text), limit)
}
