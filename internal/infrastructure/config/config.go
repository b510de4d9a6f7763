package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Image acquisition strategies.
const (
	ImageStrategyAuto     = "auto"
	ImageStrategyGenerate = "generate"
	ImageStrategyScrape   = "scrape"
	ImageStrategyNone     = "none"
)

// EnvFiles are loaded in order before the environment is processed.
// Variables already present in the environment are never overwritten.
var EnvFiles = []string{".env.local", ".env"}

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	ImageHost ImageHostConfig
	Webhook   WebhookConfig
	Scraper   ScraperConfig
	Images    ImageConfig
	Upstream  UpstreamConfig
	Prompts   PromptConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	// PublishMaxBodyBytes caps /api/publish, which may carry an inline
	// image. Zero derives it from IMAGE_MAX_BYTES.
	PublishMaxBodyBytes int64 `envconfig:"PUBLISH_MAX_BODY_BYTES" default:"0"`
}

// GeminiConfig holds generative API configuration.
type GeminiConfig struct {
	APIKey     string `envconfig:"GOOGLE_GEMINI_API_KEY"`
	BaseURL    string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	TextModel  string `envconfig:"GEMINI_TEXT_MODEL" default:"gemini-2.5-flash"`
	ImageModel string `envconfig:"GEMINI_IMAGE_MODEL" default:"gemini-2.5-flash-image"`
}

// ImageHostConfig holds image re-hosting configuration. Re-hosting is
// disabled while APIKey is empty.
type ImageHostConfig struct {
	APIKey     string        `envconfig:"IMGBB_API_KEY"`
	BaseURL    string        `envconfig:"IMGBB_BASE_URL" default:"https://api.imgbb.com"`
	Expiration time.Duration `envconfig:"IMGBB_EXPIRATION" default:"0s"`
}

// WebhookConfig holds publish webhook configuration.
type WebhookConfig struct {
	URL    string `envconfig:"MAKE_WEBHOOK_URL"`
	Source string `envconfig:"WEBHOOK_SOURCE" default:"post-generator"`
}

// ScraperConfig holds product page fetch configuration.
type ScraperConfig struct {
	MaxContentChars int    `envconfig:"SCRAPER_MAX_CONTENT_CHARS" default:"2000"`
	MaxBodyBytes    int64  `envconfig:"SCRAPER_MAX_BODY_BYTES" default:"5242880"`
	UserAgent       string `envconfig:"SCRAPER_USER_AGENT" default:"Mozilla/5.0 (compatible; PostGen/1.0)"`
	Retries         int    `envconfig:"SCRAPER_RETRIES" default:"2"`
}

// ImageConfig holds image selection configuration.
type ImageConfig struct {
	Strategy    string   `envconfig:"IMAGE_STRATEGY" default:"auto"`
	Denylist    []string `envconfig:"IMAGE_DENYLIST" default:"logo,icon,sprite,banner,avatar"`
	MaxWidth    int      `envconfig:"IMAGE_MAX_WIDTH" default:"1080"`
	MaxBytes    int64    `envconfig:"IMAGE_MAX_BYTES" default:"8388608"`
	MaxAttempts int      `envconfig:"IMAGE_MAX_ATTEMPTS" default:"3"`
}

// UpstreamConfig holds shared outbound call settings.
type UpstreamConfig struct {
	Timeout         time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"60s"`
	BreakerFailures int           `envconfig:"UPSTREAM_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"UPSTREAM_BREAKER_COOLDOWN" default:"30s"`
}

// PromptConfig holds prompt catalog configuration.
type PromptConfig struct {
	CatalogPath string `envconfig:"PROMPT_CATALOG_PATH"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"10"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load reads .env files and then the environment.
func Load() (*Config, error) {
	if err := loadEnvFiles(EnvFiles); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Images.Strategy) {
	case ImageStrategyAuto, ImageStrategyGenerate, ImageStrategyScrape, ImageStrategyNone:
	default:
		return fmt.Errorf("invalid IMAGE_STRATEGY %q", c.Images.Strategy)
	}
	if c.Scraper.MaxContentChars <= 0 {
		return fmt.Errorf("SCRAPER_MAX_CONTENT_CHARS must be positive")
	}
	return nil
}

// PublishBodyLimit returns the body limit for publish requests: room for a
// base64 data URI of the largest accepted image plus the regular JSON
// budget, unless PUBLISH_MAX_BODY_BYTES overrides it.
func (c *Config) PublishBodyLimit() int64 {
	if c.Server.PublishMaxBodyBytes > 0 {
		return c.Server.PublishMaxBodyBytes
	}
	encoded := (c.Images.MaxBytes + 2) / 3 * 4
	return encoded + c.Server.MaxBodyBytes
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Gemini: GeminiConfig{
			BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
			TextModel:  "gemini-2.5-flash",
			ImageModel: "gemini-2.5-flash-image",
		},
		ImageHost: ImageHostConfig{
			BaseURL: "https://api.imgbb.com",
		},
		Webhook: WebhookConfig{
			Source: "post-generator",
		},
		Scraper: ScraperConfig{
			MaxContentChars: 2000,
			MaxBodyBytes:    5 << 20,
			UserAgent:       "Mozilla/5.0 (compatible; PostGen/1.0)",
			Retries:         2,
		},
		Images: ImageConfig{
			Strategy:    ImageStrategyAuto,
			Denylist:    []string{"logo", "icon", "sprite", "banner", "avatar"},
			MaxWidth:    1080,
			MaxBytes:    8 << 20,
			MaxAttempts: 3,
		},
		Upstream: UpstreamConfig{
			Timeout:         60 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			Enabled:           true,
		},
	}
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return nil
}
