// Package claude implements a minimal client for the Anthropic Claude
// messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tildaslashalef/reviewgate/internal/config"
	"github.com/tildaslashalef/reviewgate/internal/loggy"
)

// Client represents an Anthropic Claude API client
type Client struct {
	apiKey       string
	baseURL      string
	apiVersion   string
	defaultModel string
	maxTokens    int
	maxRetries   int
	httpClient   *http.Client
	logger       *loggy.Logger
}

// NewClient creates a new Claude client from config
func NewClient(cfg config.ClaudeConfig, logger *loggy.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2023-06-01"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		apiVersion:   apiVersion,
		defaultModel: cfg.Model,
		maxTokens:    maxTokens,
		maxRetries:   cfg.MaxRetries,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
}

// retryableError marks failures worth retrying (throttling, transient
// server trouble, transport errors)
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// CreateMessage sends a messages request, retrying transient failures
// with exponential backoff.
func (c *Client) CreateMessage(ctx context.Context, req MessagesRequest) (*MessagesResponse, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.maxTokens
	}

	var resp *MessagesResponse
	operation := func() error {
		var err error
		resp, err = c.doCreateMessage(ctx, req)
		if err == nil {
			return nil
		}
		var retryable *retryableError
		if errors.As(err, &retryable) {
			c.logger.Warn("retrying Claude request", "error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) doCreateMessage(ctx context.Context, req MessagesRequest) (*MessagesResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", c.apiVersion)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("sending request: %w", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("reading response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		apiErr := parseAPIError(respBody, httpResp.StatusCode)
		if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
			return nil, &retryableError{err: apiErr}
		}
		return nil, apiErr
	}

	var resp MessagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	c.logger.Debug("Claude request completed",
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"elapsed", time.Since(start))
	return &resp, nil
}

func parseAPIError(body []byte, status int) error {
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("claude API error (%d, %s): %s",
			status, envelope.Error.Type, envelope.Error.Message)
	}
	return fmt.Errorf("claude API error: unexpected status %d", status)
}
