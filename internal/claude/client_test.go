package claude

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/reviewgate/internal/config"
	"github.com/tildaslashalef/reviewgate/internal/loggy"
)

func newTestClient(url string, retries int) *Client {
	return NewClient(config.ClaudeConfig{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "claude-test",
		MaxTokens:  256,
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	}, loggy.NewNoopLogger())
}

func TestCreateMessage(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
			assert.NotEmpty(t, r.Header.Get("Anthropic-Version"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "msg_1",
				"model": "claude-test",
				"content": [{"type": "text", "text": "hello "}, {"type": "text", "text": "world"}],
				"stop_reason": "end_turn",
				"usage": {"input_tokens": 10, "output_tokens": 2}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)
		resp, err := client.CreateMessage(context.Background(), MessagesRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})

		require.NoError(t, err)
		assert.Equal(t, "hello world", resp.Text())
		assert.Equal(t, "claude-test", resp.Model)
	})

	t.Run("retries throttled requests", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"model": "claude-test", "content": [{"type": "text", "text": "ok"}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)
		resp, err := client.CreateMessage(context.Background(), MessagesRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Text())
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("client errors are permanent", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad model"}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)
		_, err := client.CreateMessage(context.Background(), MessagesRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad model")
		assert.Equal(t, int32(1), calls.Load())
	})
}
