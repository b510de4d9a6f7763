package post

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "pl", c.Language())
	assert.Equal(t, "promocyjny i zachęcający do zakupu", c.ToneDescriptor(TonePromo))
	assert.Equal(t, "informacyjny i obiektywny", c.ToneDescriptor(ToneNeutral))
	assert.Equal(t, "lekki i zabawny", c.ToneDescriptor(TonePlayful))
	assert.Contains(t, c.PlatformDescriptor(PlatformInstagram), "emoji")
	assert.Contains(t, c.PlatformDescriptor(PlatformLinkedIn), "profesjonalny")
}

func TestParseToneAndPlatform(t *testing.T) {
	c := DefaultCatalog()

	tone, err := c.ParseTone("")
	require.NoError(t, err)
	assert.Equal(t, TonePromo, tone)

	tone, err = c.ParseTone(" Playful ")
	require.NoError(t, err)
	assert.Equal(t, TonePlayful, tone)

	_, err = c.ParseTone("angry")
	assert.ErrorIs(t, err, ErrInvalidOption)

	platform, err := c.ParsePlatform("")
	require.NoError(t, err)
	assert.Equal(t, PlatformFacebook, platform)

	platform, err = c.ParsePlatform("linkedin")
	require.NoError(t, err)
	assert.Equal(t, PlatformLinkedIn, platform)

	_, err = c.ParsePlatform("myspace")
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestOptions(t *testing.T) {
	c := DefaultCatalog()

	platforms := c.PlatformOptions()
	require.Len(t, platforms, 3)
	assert.Equal(t, Option{Value: "facebook", Label: "Facebook", Enabled: true}, platforms[0])
	assert.Equal(t, "instagram", platforms[1].Value)
	assert.False(t, platforms[1].Enabled)

	tones := c.ToneOptions()
	require.Len(t, tones, 3)
	assert.Equal(t, "promo", tones[0].Value)
	assert.True(t, tones[0].Enabled)
}

func TestOptionsOrder(t *testing.T) {
	get := func(string) Descriptor { return Descriptor{} }

	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"default first", []string{"b", "promo", "a"}, []string{"promo", "a", "b"}},
		{"default already first", []string{"promo", "c", "b"}, []string{"promo", "b", "c"}},
		{"repeated default", []string{"b", "promo", "a", "promo"}, []string{"promo", "promo", "a", "b"}},
		{"no default", []string{"c", "a", "b"}, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, o := range options(tt.keys, get, "promo") {
				got = append(got, o.Value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPostPrompt(t *testing.T) {
	c := DefaultCatalog()

	prompt, err := c.BuildPostPrompt("Czajnik 1.7 l", ToneNeutral, PlatformInstagram)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Czajnik 1.7 l")
	assert.Contains(t, prompt, "informacyjny i obiektywny")
	assert.Contains(t, prompt, "Instagram – krótki, wizualny, z emoji")
	assert.Contains(t, prompt, `"hashtags"`)
}

func TestBuildImagePrompt(t *testing.T) {
	c := DefaultCatalog()
	content := "Feature\n\n  list " + strings.Repeat("x", 400)

	prompt, err := c.BuildImagePrompt("Kettle", content)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Product: Kettle")
	assert.Contains(t, prompt, "Key features: Feature list xxx")
	assert.NotContains(t, prompt, strings.Repeat("x", 200))
}

func TestLoadCatalog(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		c, err := LoadCatalog("")
		require.NoError(t, err)
		assert.Equal(t, "pl", c.Language())
	})

	t.Run("override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		data := strings.Replace(string(defaultCatalog), "language: pl", "language: en", 1)
		data = strings.Replace(data, "lekki i zabawny", "light and playful", 1)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		c, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, "en", c.Language())
		assert.Equal(t, "light and playful", c.ToneDescriptor(TonePlayful))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{"missing tone", func(s string) string {
			return strings.Replace(s, "description: lekki i zabawny", "description: \"\"", 1)
		}},
		{"unknown field", func(s string) string { return s + "\nextra: true\n" }},
		{"bad template", func(s string) string {
			return strings.Replace(s, "{{.Content}}", "{{.Content", 1)
		}},
		{"unknown template field", func(s string) string {
			return strings.Replace(s, "{{.Title}}", "{{.Price}}", 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.mutate(string(defaultCatalog))))
			assert.Error(t, err)
		})
	}
}

func TestNewPublishPayload(t *testing.T) {
	now := mustTime(t, "2025-03-01T10:20:30.456+01:00")
	title := "Kettle"

	p := NewPublishPayload(PublishRequest{PostText: "Hello", Title: &title}, "post-generator", now)

	assert.Equal(t, "facebook", p.Platform)
	assert.Equal(t, "Hello", p.PostText)
	assert.Equal(t, &title, p.Title)
	assert.Nil(t, p.ImageURL)
	assert.Equal(t, map[string]any{}, p.Metadata)
	assert.Equal(t, "post-generator", p.Source)
	assert.Equal(t, "2025-03-01T09:20:30.456Z", p.Timestamp)
}
