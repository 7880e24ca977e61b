package narrative

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sleeve/internal/logging"
	"sleeve/internal/services"
)

// Backend names accepted by Settings.Backend.
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

// Settings selects and configures the narrative backend. OpenAI wins
// when both backends are configured; Backend forces one explicitly.
type Settings struct {
	Backend       string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OllamaHost    string
	OllamaModel   string
	Timeout       time.Duration
}

// Summarizer turns a marshaled vibe board into a single prose
// paragraph using whichever LLM backend is configured.
type Summarizer struct {
	openai *OpenAI
	ollama *Ollama
	logger *slog.Logger
}

// NewSummarizer wires the configured backends. A Summarizer with no
// backend is still valid; Summarize then returns a configuration error.
func NewSummarizer(settings Settings, logger *slog.Logger) *Summarizer {
	s := &Summarizer{logger: logging.NewComponentLogger(logger, "narrative")}

	backend := strings.ToLower(strings.TrimSpace(settings.Backend))
	apiKey := strings.TrimSpace(settings.OpenAIAPIKey)
	host := strings.TrimSpace(settings.OllamaHost)

	if apiKey != "" && backend != BackendOllama {
		opts := []OpenAIOption{
			WithOpenAIModel(settings.OpenAIModel),
			WithOpenAIBaseURL(settings.OpenAIBaseURL),
		}
		if settings.Timeout > 0 {
			opts = append(opts, WithOpenAIHTTPClient(&http.Client{Timeout: settings.Timeout}))
		}
		s.openai = NewOpenAI(apiKey, opts...)
	}
	if host != "" && backend != BackendOpenAI {
		opts := []OllamaOption{WithOllamaModel(settings.OllamaModel)}
		if settings.Timeout > 0 {
			opts = append(opts, WithOllamaHTTPClient(&http.Client{Timeout: settings.Timeout}))
		}
		s.ollama = NewOllama(host, opts...)
	}
	return s
}

// Configured reports whether any backend is available.
func (s *Summarizer) Configured() bool {
	return s.openai != nil || s.ollama != nil
}

// Summarize renders the narrative paragraph for a marshaled board.
func (s *Summarizer) Summarize(ctx context.Context, boardJSON, style string) (string, error) {
	if strings.TrimSpace(boardJSON) == "" {
		return "", services.Wrap(services.ErrValidation, "narrative", "summarize", "board payload must not be empty", nil)
	}
	switch {
	case s.openai != nil:
		s.logger.Debug("summarizing board", logging.String("backend", BackendOpenAI))
		return s.openai.Summarize(ctx, boardJSON, style)
	case s.ollama != nil:
		s.logger.Debug("summarizing board", logging.String("backend", BackendOllama))
		return s.ollama.Summarize(ctx, boardJSON, style)
	default:
		return "", services.Wrap(services.ErrConfiguration, "narrative", "summarize",
			"no llm backend configured: set narrative.openai_api_key (or OPENAI_API_KEY) or narrative.ollama_host (or OLLAMA_HOST)", nil)
	}
}
