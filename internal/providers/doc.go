// Package providers groups the outbound integrations of the post generator.
//
// Each subpackage wraps one upstream behind a small typed API:
//
//   - http/client: resty transport with retries, circuit breaking and request ID propagation
//   - scraper: product page fetch, text cleaning and image candidate ranking
//   - gemini: text and image generation over the generateContent REST API
//   - imagehost: optional re-hosting of generated images
//   - webhook: delivery of approved posts to the publishing automation
//
// Providers never decide HTTP status codes; they return sentinel or typed
// errors that the service and API layers map.
package providers
