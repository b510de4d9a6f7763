package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
)

type captured struct {
	path   string
	apiKey string
	body   map[string]any
}

func newServer(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got.path = r.URL.Path
			got.apiKey = r.Header.Get("x-goog-api-key")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &got.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(baseURL, key string) *Client {
	upstream := client.New(client.Config{Name: "gemini", BaseURL: baseURL}, nil, nil)
	return New(upstream, nil, Config{APIKey: key, TextModel: "text-model", ImageModel: "image-model"}, nil)
}

func TestGenerateText(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "first"}, {"text": "second"}]}}]
	}`, &got)

	c := newClient(srv.URL+"/v1beta", "secret")
	text, err := c.GenerateText(context.Background(), "write a post")
	require.NoError(t, err)

	assert.Equal(t, "first\nsecond", text)
	assert.Equal(t, "/v1beta/models/text-model:generateContent", got.path)
	assert.Equal(t, "secret", got.apiKey)

	contents := got.body["contents"].([]any)
	require.Len(t, contents, 1)
	msg := contents[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "write a post", msg["parts"].([]any)[0].(map[string]any)["text"])
	assert.NotContains(t, got.body, "generationConfig")
}

func TestGenerateImage(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{
		"candidates": [{"content": {"parts": [
			{"text": "here you go"},
			{"inlineData": {"mimeType": "image/jpeg", "data": "AAAA"}}
		]}}]
	}`, &got)

	c := newClient(srv.URL, "secret")
	mime, data, err := c.GenerateImage(context.Background(), "a photo")
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, "AAAA", data)
	assert.Equal(t, "/models/image-model:generateContent", got.path)

	cfg := got.body["generationConfig"].(map[string]any)
	assert.Equal(t, []any{"TEXT", "IMAGE"}, cfg["responseModalities"])
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		image  bool
		check  func(t *testing.T, err error)
	}{
		{
			name:   "no candidates",
			status: http.StatusOK,
			reply:  `{"candidates": []}`,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmptyResponse) },
		},
		{
			name:   "no image part",
			status: http.StatusOK,
			reply:  `{"candidates": [{"content": {"parts": [{"text": "sorry"}]}}]}`,
			image:  true,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmptyResponse) },
		},
		{
			name:   "blocked",
			status: http.StatusOK,
			reply:  `{"promptFeedback": {"blockReason": "SAFETY"}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrBlocked)
				assert.Contains(t, err.Error(), "SAFETY")
			},
		},
		{
			name:   "http error",
			status: http.StatusBadRequest,
			reply:  `{"error": {"message": "API key not valid"}}`,
			check: func(t *testing.T, err error) {
				var se *client.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadRequest, se.StatusCode)
				assert.Contains(t, se.Body, "API key not valid")
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			reply:  `not json`,
			check:  func(t *testing.T, err error) { assert.Contains(t, err.Error(), "decode gemini response") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.reply, nil)
			c := newClient(srv.URL, "secret")

			var err error
			if tt.image {
				_, _, err = c.GenerateImage(context.Background(), "p")
			} else {
				_, err = c.GenerateText(context.Background(), "p")
			}
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNotConfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := newClient(srv.URL, "")
	assert.False(t, c.Configured())

	_, err := c.GenerateText(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called)
}

func TestImageFailuresDoNotBlockText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "image-model") {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"error":{"message":"overloaded"}}`)
			return
		}
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"still writing"}]}}]}`)
	}))
	defer srv.Close()

	breaker := resilience.Settings{FailureThreshold: 2, Cooldown: time.Hour}
	text := client.New(client.Config{Name: "gemini-text", BaseURL: srv.URL, Breaker: breaker}, nil, nil)
	image := client.New(client.Config{Name: "gemini-image", BaseURL: srv.URL, Breaker: breaker}, nil, nil)
	c := New(text, image, Config{APIKey: "secret", TextModel: "text-model", ImageModel: "image-model"}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := c.GenerateImage(ctx, "draw")
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, image.BreakerState())
	assert.Equal(t, resilience.StateClosed, text.BreakerState())

	got, err := c.GenerateText(ctx, "write")
	require.NoError(t, err)
	assert.Equal(t, "still writing", got)
}
