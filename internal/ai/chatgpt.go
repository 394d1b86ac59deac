package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultChatGPTURL   = "https://api.openai.com/v1/chat/completions"
	defaultChatGPTModel = "gpt-4o-mini"
)

// ChatGPT represents a client for the OpenAI chat completions API
type ChatGPT struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// ChatGPTOption customizes a ChatGPT client
type ChatGPTOption func(*ChatGPT)

// WithChatGPTURL points the client at another endpoint
func WithChatGPTURL(url string) ChatGPTOption {
	return func(c *ChatGPT) { c.apiURL = url }
}

// WithChatGPTModel selects the model name
func WithChatGPTModel(model string) ChatGPTOption {
	return func(c *ChatGPT) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) ChatGPTOption {
	return func(c *ChatGPT) { c.httpClient = client }
}

// NewChatGPT creates a new ChatGPT client
func NewChatGPT(apiKey string, opts ...ChatGPTOption) (*ChatGPT, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	c := &ChatGPT{
		apiKey:     apiKey,
		apiURL:     defaultChatGPTURL,
		model:      defaultChatGPTModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Message represents a message in the ChatGPT conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// ChatRequest represents a request to the ChatGPT API
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// ChatResponse represents a response from the ChatGPT API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request
func (c *ChatGPT) Complete(ctx context.Context, req Completion) (string, error) {
	var messages []Message
	if req.System != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	prompt := req.Prompt
	if req.JSON {
		// json_object mode returns an object; wrap the requested array in one
		prompt += "\nWrap the array in an object under the key \"items\"."
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		request.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if req.JSON {
		return unwrapItems(content), nil
	}
	return content, nil
}

// unwrapItems extracts the "items" array from a json_object answer
func unwrapItems(content string) string {
	var wrapper struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err != nil || len(wrapper.Items) == 0 {
		return content
	}
	return string(wrapper.Items)
}
