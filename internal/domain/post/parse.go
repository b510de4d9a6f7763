package post

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

// jsonSpan matches from the first '{' to the last '}'.
var jsonSpan = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseModelOutput extracts a draft from free-form model output. The first
// {...} span is decoded loosely: a non-string title becomes "", a missing or
// empty text falls back to the whole output, and only string hashtags are
// kept. Output without a decodable object becomes the post text as is.
func ParseModelOutput(raw string) Draft {
	fallback := Draft{Text: raw, Hashtags: []string{}}

	span := jsonSpan.FindString(raw)
	if span == "" {
		return fallback
	}

	var obj map[string]any
	if err := sonic.UnmarshalString(span, &obj); err != nil || obj == nil {
		return fallback
	}

	d := Draft{Text: raw, Hashtags: []string{}}
	if title, ok := obj["title"].(string); ok {
		d.Title = strings.TrimSpace(title)
	}
	if text, ok := obj["text"].(string); ok && strings.TrimSpace(text) != "" {
		d.Text = text
	}
	if tags, ok := obj["hashtags"].([]any); ok {
		d.Hashtags = normalizeHashtags(tags)
	}
	return d
}

func normalizeHashtags(tags []any) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		s, ok := t.(string)
		if !ok {
			continue
		}
		s = strings.TrimLeft(strings.TrimSpace(s), "#")
		s = strings.Join(strings.Fields(s), "")
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}
