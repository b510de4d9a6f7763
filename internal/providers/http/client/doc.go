// Package client provides the HTTP client used for every outbound call.
//
// Each upstream (product pages, the generative API, the image host, the
// publish webhook) gets its own Client so limits and failures stay
// isolated:
//   - resty for request building and JSON decoding
//   - hashicorp/go-retryablehttp for transport retries on idempotent calls
//   - x/time/rate for outbound rate limiting
//   - a resilience.Breaker so a dead upstream fails fast; disabled for
//     clients that fetch caller supplied URLs
//   - X-Request-ID propagation and Prometheus timing
//
// Example Usage:
//
//	gemini := client.New(client.Config{Name: "gemini", Timeout: time.Minute}, metrics, logger)
//	resp, err := gemini.Do(ctx, func() (*resty.Response, error) {
//		return gemini.Request(ctx).SetBody(payload).SetResult(&out).Post(url)
//	})
package client
