// Package openai implements analysis.Client against an OpenAI-compatible chat
// completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/JaimeStill/legal-lab/internal/analysis"
	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/normalize"
)

// Client builds a fresh go-openai client per call so each request uses the
// caller's credential.
type Client struct {
	baseURL   string
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *slog.Logger
}

var _ analysis.Client = (*Client)(nil)

func New(cfg *config.AnalysisConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.TimeoutDuration(),
		logger:    logger.With("system", "analysis", "model", cfg.Model),
	}
}

// Analyze sends one chat completion request and validates its content.
func (c *Client) Analyze(ctx context.Context, payload normalize.Payload, credential string) (analysis.Result, error) {
	cfg := openai.DefaultConfig(credential)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: c.timeout}
	client := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysis.SystemPrompt},
			userMessage(payload),
		},
		MaxCompletionTokens: c.maxTokens,
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: %s", analysis.ErrAIInvocation, describeError(err))
	}
	c.logger.Debug("analysis completed",
		"duration", time.Since(start),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if len(resp.Choices) == 0 {
		return analysis.Result{}, fmt.Errorf("%w: response has no choices", analysis.ErrMalformedResponse)
	}
	return analysis.Validate([]byte(resp.Choices[0].Message.Content))
}

func userMessage(p normalize.Payload) openai.ChatCompletionMessage {
	if !p.IsBinary() {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: analysis.UserPrompt(p),
		}
	}

	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: analysis.UserPrompt(p)},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: p.DataURI()},
			},
		},
	}
}

// describeError extracts the provider message without echoing request details.
func describeError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode != 0 {
			return fmt.Sprintf("%s (status %d)", apiErr.Message, apiErr.HTTPStatusCode)
		}
		return apiErr.Message
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("request failed with status %d", reqErr.HTTPStatusCode)
	}
	return err.Error()
}
