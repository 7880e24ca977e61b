package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sleeve/internal/services"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	openAITimeout        = 30 * time.Second

	narrativeTemperature = 0.7
	narrativeMaxTokens   = 220
)

// OpenAI talks to the OpenAI chat-completion API.
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// OpenAIOption customizes the OpenAI backend.
type OpenAIOption func(*OpenAI)

// WithOpenAIHTTPClient overrides the default HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(c *OpenAI) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithOpenAIBaseURL overrides the API base (useful for tests and
// OpenAI-compatible gateways).
func WithOpenAIBaseURL(base string) OpenAIOption {
	return func(c *OpenAI) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithOpenAIModel overrides the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *OpenAI) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// NewOpenAI constructs the OpenAI backend.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	client := &OpenAI{
		apiKey:     strings.TrimSpace(apiKey),
		model:      defaultOpenAIModel,
		baseURL:    defaultOpenAIBaseURL,
		httpClient: &http.Client{Timeout: openAITimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: openAITimeout}
	}
	return client
}

type openAIChatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize sends the board to the chat-completion endpoint and returns
// the narrative paragraph.
func (c *OpenAI) Summarize(ctx context.Context, boardJSON, style string) (string, error) {
	if c.apiKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "narrative", "openai chat", "api key required", nil)
	}
	payload := openAIChatRequest{
		Model:       c.model,
		Messages:    promptMessages(boardJSON, style),
		Temperature: narrativeTemperature,
		MaxTokens:   narrativeMaxTokens,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "narrative", "openai chat", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "narrative", "openai chat", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "narrative", "openai chat", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "narrative", "openai chat", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrTransport, "narrative", "openai chat",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var completion openAIChatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", services.Wrap(services.ErrDecode, "narrative", "openai chat", "decode response", err)
	}
	if completion.Error != nil {
		return "", services.Wrap(services.ErrTransport, "narrative", "openai chat",
			"api error: "+strings.TrimSpace(completion.Error.Message), nil)
	}
	if len(completion.Choices) == 0 {
		return "", services.Wrap(services.ErrDecode, "narrative", "openai chat", "empty choices", nil)
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrDecode, "narrative", "openai chat", "empty content", nil)
	}
	return content, nil
}
