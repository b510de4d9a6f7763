// Package config provides 12-factor configuration management for the post
// generator.
//
// Configuration is loaded from environment variables with sensible defaults.
// Before the environment is read, .env.local and .env are loaded when present;
// variables already exported in the process environment always win.
//
// Configuration Sections:
//   - Server: HTTP listen address, shutdown grace period, body size limit
//   - Gemini: generative API key, base URL, text and image models
//   - ImageHost: optional image re-hosting API
//   - Webhook: publish webhook URL and source tag
//   - Scraper: page fetch limits and user agent
//   - Images: image strategy, URL denylist, resize limits
//   - Upstream: outbound timeout and circuit breaker thresholds
//   - Prompts: optional tone/platform catalog override
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT, MAX_BODY_BYTES
//   - GOOGLE_GEMINI_API_KEY, GEMINI_TEXT_MODEL, GEMINI_IMAGE_MODEL
//   - IMGBB_API_KEY, MAKE_WEBHOOK_URL, WEBHOOK_SOURCE
//   - IMAGE_STRATEGY, IMAGE_DENYLIST, IMAGE_MAX_WIDTH
//   - LOG_LEVEL, LOG_DEV, RATE_LIMIT_RPS, RATE_LIMIT_BURST
package config
