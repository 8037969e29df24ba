// Package llm wraps the OpenAI chat-completion API behind a small JSON-mode
// client. The orchestrator builds one client at startup so a missing API key
// is a startup failure, not a mid-cycle surprise.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/wayline/suppliersync/config"
	"go.uber.org/zap"
)

// Client is the completion contract consumed by the proposal adapters
type Client interface {
	// ChatJSON sends a system + user message pair and asks the model for a
	// JSON object response.
	ChatJSON(ctx context.Context, system, user string) (*Completion, error)
}

// Usage reports token consumption for one call
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of one ChatJSON call
type Completion struct {
	Text      string
	LatencyMs int64
	Usage     Usage
}

// OpenAIClient implements Client against the OpenAI chat completions endpoint
type OpenAIClient struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIClient creates a client. A missing API key is a configuration
// error so operators can tell setup problems from transient call failures.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, NewCallError(KindConfig, "OPENAI_API_KEY is not set", 0, false, nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// ChatJSON performs a chat completion with JSON response format and retries
// transient failures (connection errors, 429, 5xx).
func (c *OpenAIClient) ChatJSON(ctx context.Context, system, user string) (*Completion, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, NewCallError(KindAPI, "failed to marshal request", 0, false, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewCallError(KindTimeout, "context cancelled during retry", 0, false, ctx.Err())
			case <-time.After(c.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		completion, err := c.doRequest(ctx, reqBody)
		if err == nil {
			return completion, nil
		}
		lastErr = err

		var callErr *CallError
		if errors.As(err, &callErr) && !callErr.Retryable {
			return nil, err
		}
		c.logger.Warn("completion call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return nil, lastErr
}

// doRequest performs a single HTTP round trip. Latency is measured per
// attempt, so a retried call reports the timing of the attempt that
// succeeded rather than the whole retry window.
func (c *OpenAIClient) doRequest(ctx context.Context, reqBody []byte) (*Completion, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewCallError(KindAPI, "failed to create request", 0, false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, NewCallError(KindTimeout,
				fmt.Sprintf("completion call timed out after %s", c.cfg.Timeout), 0, false, err)
		}
		if ctx.Err() != nil {
			return nil, NewCallError(KindTimeout, "completion call cancelled", 0, false, err)
		}
		return nil, NewCallError(KindConnection, "completion call failed", 0, true, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewCallError(KindConnection, "failed to read response", httpResp.StatusCode, true, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.errorFromStatus(httpResp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, NewCallError(KindAPI, "failed to unmarshal response", httpResp.StatusCode, false, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, NewCallError(KindAPI, "response contained no choices", httpResp.StatusCode, false, nil)
	}

	return &Completion{
		Text:      chatResp.Choices[0].Message.Content,
		LatencyMs: time.Since(start).Milliseconds(),
		Usage:     chatResp.Usage,
	}, nil
}

// errorFromStatus maps HTTP error responses onto the call error taxonomy
func (c *OpenAIClient) errorFromStatus(status int, body []byte) error {
	var errResp errorResponse
	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewCallError(KindAuth, message, status, false, nil)
	case status == http.StatusTooManyRequests:
		return NewCallError(KindRateLimit, message, status, true, nil)
	case status >= 500:
		return NewCallError(KindAPI, message, status, true, nil)
	default:
		return NewCallError(KindAPI, message, status, false, nil)
	}
}

// OpenAI wire types

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
