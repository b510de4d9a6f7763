package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
)

var (
	ErrNotConfigured = errors.New("gemini API key not configured")
	ErrEmptyResponse = errors.New("gemini returned no content")
	ErrBlocked       = errors.New("gemini blocked the prompt")
)

// Config holds the API key and model names.
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

// Client calls the generateContent endpoint.
type Client struct {
	text   *client.Client
	image  *client.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Gemini client. Text and image calls go through separate
// upstreams so image model failures cannot open the breaker guarding text
// generation. Both must carry the API base URL, e.g.
// https://generativelanguage.googleapis.com/v1beta. A nil image upstream
// reuses text.
func New(text, image *client.Client, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if image == nil {
		image = text
	}
	return &Client{text: text, image: image, cfg: cfg, logger: logger}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// GenerateText sends a single user prompt to the text model and returns the
// concatenated text parts of the answer.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.text, c.cfg.TextModel, generateRequest{
		Contents: []Content{userText(prompt)},
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateImage asks the image model for a picture and returns its MIME
// type and base64 payload.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (mime, data string, err error) {
	resp, err := c.generate(ctx, c.image, c.cfg.ImageModel, generateRequest{
		Contents: []Content{userText(prompt)},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	})
	if err != nil {
		return "", "", err
	}
	img, ok := resp.Image()
	if !ok {
		return "", "", ErrEmptyResponse
	}
	mime = img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return mime, img.Data, nil
}

func (c *Client) generate(ctx context.Context, upstream *client.Client, model string, req generateRequest) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}

	path := "/models/" + url.PathEscape(model) + ":generateContent"
	resp, err := upstream.Do(ctx, func() (*resty.Response, error) {
		return upstream.Request(ctx).
			SetHeader("x-goog-api-key", c.cfg.APIKey).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(path)
	})
	if err != nil {
		return nil, err
	}

	var out Response
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, out.PromptFeedback.BlockReason)
	}

	logging.FromContext(ctx, c.logger).Debug("gemini call finished",
		zap.String("model", model),
		zap.Int("candidates", len(out.Candidates)),
	)
	return &out, nil
}

func userText(prompt string) Content {
	return Content{Role: "user", Parts: []Part{{Text: prompt}}}
}
