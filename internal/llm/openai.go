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

const (
	defaultHost        = "https://api.openai.com/v1"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
	defaultTimeout     = 30 * time.Second
)

// Provider is the single collaborator the agents need from a language
// model: system instruction and user text in, completion text out.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIClient implements Provider against the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey      string
	model       string
	host        string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:      apiKey,
		model:       model,
		host:        defaultHost,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

// WithBaseURL points the client at a different endpoint (proxy, local server,
// test server).
func (c *OpenAIClient) WithBaseURL(baseURL string) *OpenAIClient {
	c.host = strings.TrimSuffix(baseURL, "/")
	return c
}

func (c *OpenAIClient) WithTimeout(timeout time.Duration) *OpenAIClient {
	c.client.Timeout = timeout
	return c
}

func (c *OpenAIClient) Model() string { return c.model }

// Complete sends a two-entry prompt and returns the completion text.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	response, err := c.makeRequest(ctx, request)
	if err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return response.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) makeRequest(ctx context.Context, request chatRequest) (*chatResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK && response.Error == nil {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return &response, nil
}
