package post

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidOption = errors.New("invalid option")

// Descriptor is one tone or platform entry of the catalog.
type Descriptor struct {
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"-"`
	Enabled     *bool  `yaml:"enabled,omitempty" json:"enabled"`
}

// IsEnabled reports whether the option is offered in the UI.
func (d Descriptor) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

type catalogFile struct {
	Language  string                `yaml:"language"`
	Tones     map[string]Descriptor `yaml:"tones"`
	Platforms map[string]Descriptor `yaml:"platforms"`
	Prompts   struct {
		Post  string `yaml:"post"`
		Image string `yaml:"image"`
	} `yaml:"prompts"`
}

// Catalog holds tone and platform descriptors and the prompt templates.
// It is immutable after loading.
type Catalog struct {
	language    string
	tones       map[Tone]Descriptor
	platforms   map[Platform]Descriptor
	postPrompt  *template.Template
	imagePrompt *template.Template
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file; an empty path selects the embedded one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog YAML. Every known tone and
// platform must be described and both prompt templates must render.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		language:  f.Language,
		tones:     make(map[Tone]Descriptor, len(f.Tones)),
		platforms: make(map[Platform]Descriptor, len(f.Platforms)),
	}
	for k, d := range f.Tones {
		c.tones[Tone(k)] = d
	}
	for k, d := range f.Platforms {
		c.platforms[Platform(k)] = d
	}

	for _, t := range []Tone{TonePromo, ToneNeutral, TonePlayful} {
		if c.tones[t].Description == "" {
			return nil, fmt.Errorf("catalog: tone %q has no description", t)
		}
	}
	for _, p := range []Platform{PlatformFacebook, PlatformInstagram, PlatformLinkedIn} {
		if c.platforms[p].Description == "" {
			return nil, fmt.Errorf("catalog: platform %q has no description", p)
		}
	}

	var err error
	if c.postPrompt, err = parsePrompt("post", f.Prompts.Post); err != nil {
		return nil, err
	}
	if c.imagePrompt, err = parsePrompt("image", f.Prompts.Image); err != nil {
		return nil, err
	}
	if _, err := c.BuildPostPrompt("sample", TonePromo, PlatformFacebook); err != nil {
		return nil, err
	}
	if _, err := c.BuildImagePrompt("sample", "sample"); err != nil {
		return nil, err
	}
	return c, nil
}

func parsePrompt(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("catalog: %s prompt is empty", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s prompt: %w", name, err)
	}
	return tmpl, nil
}

// Language returns the catalog language tag.
func (c *Catalog) Language() string {
	return c.language
}

// ParseTone validates a tone name. Empty selects the default.
func (c *Catalog) ParseTone(s string) (Tone, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTone, nil
	}
	if _, ok := c.tones[Tone(s)]; !ok {
		return "", fmt.Errorf("%w: unknown tone %q", ErrInvalidOption, s)
	}
	return Tone(s), nil
}

// ParsePlatform validates a platform name. Empty selects the default.
func (c *Catalog) ParsePlatform(s string) (Platform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPlatform, nil
	}
	if _, ok := c.platforms[Platform(s)]; !ok {
		return "", fmt.Errorf("%w: unknown platform %q", ErrInvalidOption, s)
	}
	return Platform(s), nil
}

// ToneDescriptor returns the prompt phrase for a tone.
func (c *Catalog) ToneDescriptor(t Tone) string {
	return c.tones[t].Description
}

// PlatformDescriptor returns the prompt phrase for a platform.
func (c *Catalog) PlatformDescriptor(p Platform) string {
	return c.platforms[p].Description
}

// Option is a selectable tone or platform for the UI.
type Option struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// ToneOptions lists tones in a stable order.
func (c *Catalog) ToneOptions() []Option {
	keys := make([]string, 0, len(c.tones))
	for k := range c.tones {
		keys = append(keys, string(k))
	}
	return options(keys, func(k string) Descriptor { return c.tones[Tone(k)] }, string(DefaultTone))
}

// PlatformOptions lists platforms in a stable order.
func (c *Catalog) PlatformOptions() []Option {
	keys := make([]string, 0, len(c.platforms))
	for k := range c.platforms {
		keys = append(keys, string(k))
	}
	return options(keys, func(k string) Descriptor { return c.platforms[Platform(k)] }, string(DefaultPlatform))
}

// options sorts keys with the default first, then alphabetically.
func options(keys []string, get func(string) Descriptor, first string) []Option {
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == first) != (keys[j] == first) {
			return keys[i] == first
		}
		return keys[i] < keys[j]
	})
	out := make([]Option, 0, len(keys))
	for _, k := range keys {
		d := get(k)
		label := d.Label
		if label == "" {
			label = k
		}
		out = append(out, Option{Value: k, Label: label, Enabled: d.IsEnabled()})
	}
	return out
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
