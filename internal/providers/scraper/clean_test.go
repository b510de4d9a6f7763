package scraper

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		limit int
		want  string
	}{
		{
			name:  "body only",
			html:  `<html><head><title>Shop</title></head><body class="p"><h1>Kettle</h1><p>Boils   fast.</p></body></html>`,
			limit: 2000,
			want:  "Kettle Boils fast.",
		},
		{
			name:  "scripts and styles removed",
			html:  "<body><script type=\"text/javascript\">var x = '<p>no</p>';</script><STYLE>p{color:red}</STYLE><p>Visible</p></body>",
			limit: 2000,
			want:  "Visible",
		},
		{
			name:  "multi-line script",
			html:  "<body>Before<script>\nfunction a() {\n return 1;\n}\n</script>After</body>",
			limit: 2000,
			want:  "Before After",
		},
		{
			name:  "entities decoded",
			html:  "<body><p>Salt &amp; pepper &quot;set&quot;</p></body>",
			limit: 2000,
			want:  `Salt & pepper "set"`,
		},
		{
			name:  "no body falls back to whole document",
			html:  "<div>Loose <b>fragment</b></div>",
			limit: 2000,
			want:  "Loose fragment",
		},
		{
			name:  "truncated to limit",
			html:  "<body>" + strings.Repeat("a", 50) + "</body>",
			limit: 10,
			want:  strings.Repeat("a", 10),
		},
		{
			name:  "empty",
			html:  "",
			limit: 2000,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.html, tt.limit))
		})
	}
}

func TestCleanTextNeverExceedsLimit(t *testing.T) {
	doc := "<body>" + strings.Repeat("Zażółć gęślą jaźń ", 400) + "</body>"

	out := CleanText(doc, 2000)
	assert.Equal(t, 2000, utf8.RuneCountInString(out))
	assert.True(t, utf8.ValidString(out))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", TruncateRunes("abc", 0))
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "żó", TruncateRunes("żółw", 2))
}

func TestDecodeHTML(t *testing.T) {
	t.Run("utf-8 passthrough", func(t *testing.T) {
		assert.Equal(t, "<p>Café</p>", DecodeHTML([]byte("<p>Café</p>"), "text/html; charset=utf-8"))
	})

	t.Run("latin-1 from header", func(t *testing.T) {
		latin1 := []byte{'<', 'p', '>', 'C', 'a', 'f', 0xe9, '<', '/', 'p', '>'}
		assert.Equal(t, "<p>Café</p>", DecodeHTML(latin1, "text/html; charset=ISO-8859-1"))
	})

	t.Run("meta charset", func(t *testing.T) {
		doc := append([]byte(`<html><head><meta charset="windows-1250"></head><body>`), 0xb9, 'x')
		assert.Contains(t, DecodeHTML(doc, "text/html"), "ąx")
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", DecodeHTML(nil, ""))
	})
}
