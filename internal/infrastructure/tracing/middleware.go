package tracing

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/shared/id"
)

const maxInboundIDLen = 128

// HTTPMiddleware assigns every request an ID, echoes it in the response,
// stores a request scoped logger on the context and records a root span.
func HTTPMiddleware(tracer *Tracer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" || len(reqID) > maxInboundIDLen {
			reqID = id.NewRequestID().String()
		}

		ctx := WithRequestID(c.Request.Context(), reqID)
		ctx = logging.WithContext(ctx, logger.With(zap.String("request_id", reqID)))

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+c.FullPath())
		span.SetTag("http.path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, reqID)

		c.Next()

		span.Status = c.Writer.Status()
		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		tracer.End(span, err)
	}
}
