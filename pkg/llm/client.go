// Package llm wraps an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phantomos-app/phantomos-backend/pkg/config"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Completer is the surface consumed by the tagging engine.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client provides access to OpenAI-compatible LLM endpoints.
type Client struct {
	client *openai.Client
	model  string
	logg   *logger.Logger
}

// New creates a chat completion client from the AI config.
func New(cfg config.AIConfig, logg *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ai model is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logg:   logg,
	}, nil
}

// Complete sends a system+user message pair and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		c.logg.Error(ctx, "llm request failed", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	fields := map[string]any{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"elapsed_ms":        time.Since(start).Milliseconds(),
	}
	c.logg.Info(c.logg.WithFields(ctx, fields), "llm request completed")

	return resp.Choices[0].Message.Content, nil
}
