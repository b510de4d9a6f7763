/*
Package monitoring provides Prometheus metrics for the post generator.

# Features

- HTTP request metrics (count, latency, response size) by route template
- Upstream call metrics per dependency (page fetch, gemini, imagehost, webhook)
- Circuit breaker state per upstream
- Pipeline metrics (generation outcome and latency, image source, publishes)
- Open generation stream connections

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics, "gemini")
	resp, err := call()
	timer.Stop(monitoring.Outcome(err))
*/
package monitoring
