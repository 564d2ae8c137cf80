package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
	"github.com/affordableaudits/audit-api/internal/infra/ai/prompt"
)

// maxTokens bounds the narrative length per request.
const maxTokens = 800

type Client struct {
	*openai.Client
	Model        string
	SystemPrompt string
	Timeout      time.Duration
}

func NewClient(apiKey, model, systemPrompt string, timeout time.Duration) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model, systemPrompt, timeout)
}

// NewClientWithConfig lets callers point the client at a different base URL.
func NewClientWithConfig(cfg openai.ClientConfig, model, systemPrompt string, timeout time.Duration) *Client {
	if systemPrompt == "" {
		systemPrompt = prompt.ExecutiveSummary()
	}
	return &Client{
		Client:       openai.NewClientWithConfig(cfg),
		Model:        model,
		SystemPrompt: systemPrompt,
		Timeout:      timeout,
	}
}

// Summarize sends both raw findings to the reasoning service and returns the
// narrative text. A response without usable text is an error, never an empty
// summary: callers must not mistake a malformed response for "no findings".
func (c *Client) Summarize(ctx context.Context, structural, symbolic domain.ScanResult) (string, error) {
	payload, err := prompt.FindingsPayload(structural.Report, symbolic.Report)
	if err != nil {
		return "", err
	}

	model := c.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", domain.ErrSynthesisTimeout, err)
		}
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrSynthesisResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty message content", domain.ErrSynthesisResponse)
	}
	return text, nil
}
