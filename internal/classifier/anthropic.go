package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/intelligrit/emotion-atlas/internal/retry"
)

const anthropicAPI = "https://api.anthropic.com/v1"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	APIKey     string
	ModelName  string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

// NewAnthropicClient creates a client for model. An empty baseURL uses the
// public endpoint.
func NewAnthropicClient(apiKey, model, baseURL string, maxTokens int) *AnthropicClient {
	if baseURL == "" {
		baseURL = anthropicAPI
	}
	return &AnthropicClient{
		APIKey:     apiKey,
		ModelName:  model,
		BaseURL:    baseURL,
		MaxTokens:  maxTokens,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []apiContentBlock `json:"content"`
	Error   *apiError         `json:"error,omitempty"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (c *AnthropicClient) Model() string { return c.ModelName }

// Complete sends prompt and returns the text of the first content block.
// Non-200 responses are returned as *retry.StatusError.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     c.ModelName,
		MaxTokens: c.MaxTokens,
		System:    systemPrompt,
		Messages:  []apiMessage{{Role: "user", Content: prompt}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &retry.StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("API error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from API")
}
