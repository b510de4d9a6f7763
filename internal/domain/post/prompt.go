package post

import (
	"strings"
	"unicode/utf8"
)

// ImageFeatureChars is how much product text goes into the image prompt.
const ImageFeatureChars = 200

type postPromptData struct {
	Content  string
	Tone     string
	Platform string
}

type imagePromptData struct {
	Title    string
	Features string
}

// BuildPostPrompt renders the text generation prompt for scraped content.
func (c *Catalog) BuildPostPrompt(content string, tone Tone, platform Platform) (string, error) {
	return render(c.postPrompt, postPromptData{
		Content:  content,
		Tone:     c.ToneDescriptor(tone),
		Platform: c.PlatformDescriptor(platform),
	})
}

// BuildImagePrompt renders the image generation prompt from the post title
// and the first ImageFeatureChars characters of the product text.
func (c *Catalog) BuildImagePrompt(title, content string) (string, error) {
	return render(c.imagePrompt, imagePromptData{
		Title:    title,
		Features: strings.Join(strings.Fields(firstRunes(content, ImageFeatureChars)), " "),
	})
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
