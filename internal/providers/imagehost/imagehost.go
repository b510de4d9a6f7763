// Package imagehost uploads generated images to an ImgBB compatible host so
// published posts can reference a public URL instead of a data URI.
package imagehost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
)

var (
	ErrNotConfigured = errors.New("image host API key not configured")
	ErrUploadFailed  = errors.New("image host rejected upload")
)

// Config holds the API key and optional expiration of uploads.
type Config struct {
	APIKey string
	// Expiration deletes uploads after the given time; zero keeps them.
	Expiration time.Duration
}

// Client uploads images.
type Client struct {
	upstream *client.Client
	cfg      Config
	logger   *zap.Logger
}

type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates an uploader. The upstream client must carry the host base URL.
func New(upstream *client.Client, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{upstream: upstream, cfg: cfg, logger: logger}
}

// Configured reports whether uploads are enabled.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Upload stores image bytes under name and returns the public URL.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	form := map[string]string{
		"key":   c.cfg.APIKey,
		"image": base64.StdEncoding.EncodeToString(data),
		"name":  name,
	}
	if c.cfg.Expiration > 0 {
		form["expiration"] = strconv.Itoa(int(c.cfg.Expiration.Seconds()))
	}

	resp, err := c.upstream.Do(ctx, func() (*resty.Response, error) {
		return c.upstream.Request(ctx).
			SetFormData(form).
			Post("/1/upload")
	})
	if err != nil {
		return "", err
	}

	var out uploadResponse
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if !out.Success || out.Data.URL == "" {
		msg := "no URL in response"
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}

	logging.FromContext(ctx, c.logger).Debug("image uploaded",
		zap.String("name", name),
		zap.Int("bytes", len(data)),
	)
	return out.Data.URL, nil
}
