// Package main is the entry point for the PostGen server and CLI.
//
// Pipeline:
//
//	product URL → page fetch → Gemini post text → image (generated or
//	scraped, optionally re-hosted) → preview → webhook
//
// Commands:
//   - serve (default): HTTP API, WebSocket stream and browser front end
//   - generate <url>: one-shot generation printed as JSON
//   - publish --text ...: forward a post to the webhook
//
// Configuration:
//   - Environment variables, with .env.local and .env loaded first
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	GOOGLE_GEMINI_API_KEY=... MAKE_WEBHOOK_URL=... ./postgen serve --port 8000
//
//	# Development mode (colored logs, debug level)
//	./postgen --dev --log-level debug
//
//	# One post from the command line
//	./postgen generate https://shop.example.com/p/1 --tone playful
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
