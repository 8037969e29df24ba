package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wayline/suppliersync/config"
	"go.uber.org/zap"
)

func testClient(t *testing.T, baseURL string) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(config.OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "gpt-4o-mini",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewOpenAIClient_MissingKeyIsConfigError(t *testing.T) {
	_, err := NewOpenAIClient(config.OpenAIConfig{}, zap.NewNop())

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, KindConfig, callErr.Kind)
}

func TestChatJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"prices\": []}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	completion, err := client.ChatJSON(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.Equal(t, `{"prices": []}`, completion.Text)
	assert.Equal(t, 120, completion.Usage.PromptTokens)
	assert.Equal(t, 30, completion.Usage.CompletionTokens)
	assert.GreaterOrEqual(t, completion.LatencyMs, int64(0))
}

func TestChatJSON_AuthErrorNotRetried(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.ChatJSON(context.Background(), "system", "user")

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, KindAuth, callErr.Kind)
	assert.Equal(t, "invalid api key", callErr.Message)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestChatJSON_RetriesServerErrors(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{}"}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	completion, err := client.ChatJSON(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.Equal(t, "{}", completion.Text)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestChatJSON_LatencyExcludesFailedAttemptsAndBackoff(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{}"}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(config.OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "gpt-4o-mini",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		RetryDelay: 100 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	completion, err := client.ChatJSON(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
	// The slow failed attempt plus the backoff add up to 200ms; the
	// successful attempt itself is near-instant against a local server.
	assert.Less(t, completion.LatencyMs, int64(100))
}

func TestChatJSON_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	client := testClient(t, srv.URL)
	_, err := client.ChatJSON(context.Background(), "system", "user")

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, KindConnection, callErr.Kind)
}

func TestChatJSON_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [], "usage": {}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.ChatJSON(context.Background(), "system", "user")

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, KindAPI, callErr.Kind)
}
