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
	defaultOllamaModel = "llama3.2"
	ollamaTimeout      = 60 * time.Second
)

// Ollama talks to a local Ollama instance's chat API.
type Ollama struct {
	host       string
	model      string
	httpClient *http.Client
}

// OllamaOption customizes the Ollama backend.
type OllamaOption func(*Ollama)

// WithOllamaHTTPClient overrides the default HTTP client.
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(c *Ollama) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithOllamaModel overrides the default model.
func WithOllamaModel(model string) OllamaOption {
	return func(c *Ollama) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// NewOllama constructs the Ollama backend for the given host, e.g.
// http://localhost:11434.
func NewOllama(host string, opts ...OllamaOption) *Ollama {
	client := &Ollama{
		host:       strings.TrimRight(strings.TrimSpace(host), "/"),
		model:      defaultOllamaModel,
		httpClient: &http.Client{Timeout: ollamaTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: ollamaTimeout}
	}
	return client
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

// The response carries message.content on current versions and a
// trailing messages list on older ones.
type ollamaChatResponse struct {
	Message  chatMessage   `json:"message"`
	Messages []chatMessage `json:"messages"`
	Error    string        `json:"error"`
}

// Summarize sends the board to /api/chat and returns the narrative
// paragraph.
func (c *Ollama) Summarize(ctx context.Context, boardJSON, style string) (string, error) {
	if c.host == "" {
		return "", services.Wrap(services.ErrConfiguration, "narrative", "ollama chat", "host required", nil)
	}
	payload := ollamaChatRequest{
		Model:    c.model,
		Messages: promptMessages(boardJSON, style),
		Stream:   false,
		Options:  ollamaOptions{Temperature: narrativeTemperature},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "narrative", "ollama chat", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "narrative", "ollama chat", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "narrative", "ollama chat", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "narrative", "ollama chat", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrTransport, "narrative", "ollama chat",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var completion ollamaChatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", services.Wrap(services.ErrDecode, "narrative", "ollama chat", "decode response", err)
	}
	if completion.Error != "" {
		return "", services.Wrap(services.ErrTransport, "narrative", "ollama chat",
			"api error: "+strings.TrimSpace(completion.Error), nil)
	}

	content := strings.TrimSpace(completion.Message.Content)
	if content == "" && len(completion.Messages) > 0 {
		content = strings.TrimSpace(completion.Messages[len(completion.Messages)-1].Content)
	}
	if content == "" {
		return "", services.Wrap(services.ErrDecode, "narrative", "ollama chat", "unexpected response shape", nil)
	}
	return content, nil
}
