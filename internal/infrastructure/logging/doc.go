// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: coloured console output for humans
//
// Components receive a *zap.Logger through their constructors. The HTTP
// layer stores a request scoped logger (carrying the request ID) on the
// request context; FromContext retrieves it in downstream code.
//
// Example Usage:
//
//	logger := logging.MustNew(logging.Config{Level: "info"})
//	logger.Info("Server starting", zap.String("addr", ":8000"))
//	fetchLog := logger.Component("scraper")
package logging
