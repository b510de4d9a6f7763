// Package http provides the HTTP and WebSocket handlers of the post
// generator.
//
// Routes:
//   - GET  /                     browser front end
//   - GET  /health               configuration and breaker status
//   - POST /api/generate         product URL to post
//   - GET  /api/generate/stream  same, over a WebSocket with progress events
//   - POST /api/publish          forward a post to the webhook
//
// Errors are returned as {"error": "..."} with the status chosen by
// statusFor: 400 for bad input, 500 for missing configuration and 502 when
// an upstream failed.
//
// Example Usage:
//
//	handlers := http.NewHandlers(gen, pub, upstreams, metrics, logger)
//	router.POST("/api/generate", handlers.Generate)
package http
