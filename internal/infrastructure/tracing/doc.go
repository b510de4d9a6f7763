/*
Package tracing provides request IDs and lightweight spans.

Every inbound request gets an X-Request-ID (accepted from the caller when
present, otherwise a fresh req_ ULID). The ID is echoed in the response,
attached to the request scoped logger and forwarded on every outbound call
so a generation can be followed across the page fetch, the generative API
and the webhook.

# Usage

	tracer := tracing.New("postgen", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer, logger))

	span, ctx := tracer.StartSpan(ctx, "generate.fetch")
	content, err := fetch(ctx)
	tracer.End(span, err)

Finished spans are buffered and logged by a background collector; the
buffer drops spans rather than block request handling.
*/
package tracing
