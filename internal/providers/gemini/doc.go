// Package gemini is a minimal client for the Gemini generateContent REST
// endpoint. It covers the two calls the post pipeline needs: plain text
// generation and image generation with inline data output.
package gemini
