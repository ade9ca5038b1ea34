package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type GeminiProvider struct {
	apiKey      string
	temperature float32
	maxTokens   int
	client      *http.Client
}

func NewGeminiProvider(apiKey string, temperature float32, maxTokens int) *GeminiProvider {
	if temperature == 0 {
		temperature = 0.7
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &GeminiProvider{
		apiKey:      apiKey,
		temperature: temperature,
		maxTokens:   maxTokens,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *GeminiProvider) GetProviderName() string {
	return "Google Gemini"
}

// Gemini REST API request/response structures
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:generateContent?key=%s",
		model, p.apiKey)

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
			Role:  "user",
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.temperature,
			MaxOutputTokens: p.maxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyGeminiError(model, resp.StatusCode, body)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini (candidates: %d)", len(geminiResp.Candidates))
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// classifyGeminiError maps HTTP status codes onto the shared error taxonomy.
// The body is kept in the message for logs; callers match on the sentinel.
func classifyGeminiError(model string, status int, body []byte) error {
	detail := fmt.Sprintf("gemini error (model: %s, status: %d): %s", model, status, string(body))

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, ErrModelNotFound)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", detail, ErrRateLimited)
	case status >= 500:
		return fmt.Errorf("%s: %w", detail, ErrServer)
	case strings.Contains(string(body), "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(string(body)), "quota"):
		return fmt.Errorf("%s: %w", detail, ErrRateLimited)
	default:
		return fmt.Errorf("%s", detail)
	}
}
