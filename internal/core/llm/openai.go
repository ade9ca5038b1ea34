package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client      *openai.Client
	temperature float32
	maxTokens   int
}

func NewOpenAIProvider(apiKey string, temperature float32, maxTokens int) *OpenAIProvider {
	if temperature == 0 {
		temperature = 0.7
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *OpenAIProvider) GetProviderName() string {
	return "OpenAI"
}

func (p *OpenAIProvider) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(model, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI (model: %s)", model)
	}

	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(model string, err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai error (model: %s): %w", model, err)
	}

	detail := fmt.Sprintf("openai error (model: %s, status: %d): %s", model, apiErr.HTTPStatusCode, apiErr.Message)

	switch {
	case apiErr.HTTPStatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, ErrModelNotFound)
	case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", detail, ErrRateLimited)
	case apiErr.HTTPStatusCode >= 500:
		return fmt.Errorf("%s: %w", detail, ErrServer)
	default:
		return fmt.Errorf("%s", detail)
	}
}
