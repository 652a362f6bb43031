// Package llm abstracts the text-generation collaborator behind a
// small interface so the pipeline never knows which provider answered.
package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tildaslashalef/reviewgate/internal/claude"
	"github.com/tildaslashalef/reviewgate/internal/config"
	"github.com/tildaslashalef/reviewgate/internal/loggy"
)

// Request is a generic single-turn generation request
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the raw text answer plus the model that produced it
type Response struct {
	Content string
	Model   string
}

// Client is the interface the review pipeline depends on
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// NewClient builds the configured provider client, wrapped with a
// request rate limiter when one is configured.
func NewClient(cfg *config.Config, logger *loggy.Logger) (Client, error) {
	if cfg.Claude.APIKey == "" {
		return nil, fmt.Errorf("no Claude API key configured")
	}

	var client Client = &claudeAdapter{client: claude.NewClient(cfg.Claude, logger)}

	if cfg.Claude.RatePerMin > 0 {
		limit := rate.Every(time.Minute / time.Duration(cfg.Claude.RatePerMin))
		client = &rateLimitedClient{
			inner:   client,
			limiter: rate.NewLimiter(limit, 1),
		}
	}
	return client, nil
}

// claudeAdapter adapts the Claude client to the Client interface
type claudeAdapter struct {
	client *claude.Client
}

func (a *claudeAdapter) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := a.client.CreateMessage(ctx, claude.MessagesRequest{
		Model:       req.Model,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []claude.Message{
			{Role: "user", Content: req.Prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Response{Content: resp.Text(), Model: resp.Model}, nil
}

// rateLimitedClient blocks each request on a token bucket
type rateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

func (c *rateLimitedClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.inner.Generate(ctx, req)
}
