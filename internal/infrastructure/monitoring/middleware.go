package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		size := int64(c.Writer.Size())
		if size < 0 {
			size = 0
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start), size)
	}
}

// Timer measures one upstream call
type Timer struct {
	start   time.Time
	metrics *Metrics
	service string
}

// NewTimer starts timing a call to service. A nil metrics is allowed.
func NewTimer(metrics *Metrics, service string) *Timer {
	return &Timer{start: time.Now(), metrics: metrics, service: service}
}

// Stop records the call with the given outcome
func (t *Timer) Stop(outcome string) time.Duration {
	d := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordUpstream(t.service, outcome, d)
	}
	return d
}

// Outcome maps an error to a metric label
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
