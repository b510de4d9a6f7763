/*
Package resilience provides a circuit breaker for outbound calls.

Every upstream the post generator talks to (product pages, the generative
API, the image host, the publish webhook) gets its own Breaker so a dead
dependency fails fast instead of holding requests for the full timeout.

# Usage

	breaker := resilience.New("gemini", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})

	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Post(url)
	})

# States

	Closed --[N consecutive failures]-> Open --[cooldown]-> Half-Open --[probes succeed]-> Closed
	                                                           |
	                                                       [failure]
	                                                           v
	                                                         Open

Results recorded after a state change are discarded, so a slow call that
started while closed cannot reopen a breaker that has since recovered.
*/
package resilience
