package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	c.normalizeMusicBrainz()
	c.normalizeCoverArt()
	c.normalizeSearch()
	c.normalizeVibe()
	c.normalizeNarrative()
	return c.normalizeLogging()
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicBrainz.BaseURL), "/")
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMBBaseURL
	}
	c.MusicBrainz.UserAgent = strings.TrimSpace(c.MusicBrainz.UserAgent)
	if value, ok := os.LookupEnv("MB_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.MusicBrainz.UserAgent = strings.TrimSpace(value)
	}
	if c.MusicBrainz.UserAgent == "" {
		c.MusicBrainz.UserAgent = defaultMBUserAgent
	}
	if c.MusicBrainz.TimeoutSeconds <= 0 {
		c.MusicBrainz.TimeoutSeconds = defaultMBTimeout
	}
}

func (c *Config) normalizeCoverArt() {
	c.CoverArt.ArchiveBaseURL = strings.TrimRight(strings.TrimSpace(c.CoverArt.ArchiveBaseURL), "/")
	if c.CoverArt.ArchiveBaseURL == "" {
		c.CoverArt.ArchiveBaseURL = defaultArchiveBaseURL
	}
	c.CoverArt.ITunesBaseURL = strings.TrimRight(strings.TrimSpace(c.CoverArt.ITunesBaseURL), "/")
	if c.CoverArt.ITunesBaseURL == "" {
		c.CoverArt.ITunesBaseURL = defaultITunesBaseURL
	}
	if c.CoverArt.ArchiveTimeoutSeconds <= 0 {
		c.CoverArt.ArchiveTimeoutSeconds = defaultArchiveTimeout
	}
	if c.CoverArt.ITunesTimeoutSeconds <= 0 {
		c.CoverArt.ITunesTimeoutSeconds = defaultITunesTimeout
	}
	if c.CoverArt.ImageTimeoutSeconds <= 0 {
		c.CoverArt.ImageTimeoutSeconds = defaultImageTimeout
	}
	if c.CoverArt.ReleaseProbeLimit <= 0 {
		c.CoverArt.ReleaseProbeLimit = defaultReleaseProbes
	}
}

func (c *Config) normalizeSearch() {
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = defaultSearchLimit
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = defaultMaxLimit
	}
	if c.Search.ReleaseGroupCap <= 0 {
		c.Search.ReleaseGroupCap = defaultReleaseGroupCap
	}
	if c.Search.ListingLimit <= 0 {
		c.Search.ListingLimit = defaultListingLimit
	}
}

func (c *Config) normalizeVibe() {
	if c.Vibe.MaxItems <= 0 {
		c.Vibe.MaxItems = defaultVibeMaxItems
	}
	if c.Vibe.Concurrency <= 0 {
		c.Vibe.Concurrency = defaultVibeConcurrency
	}
}

func (c *Config) normalizeNarrative() {
	c.Narrative.Backend = strings.ToLower(strings.TrimSpace(c.Narrative.Backend))
	c.Narrative.OpenAIAPIKey = strings.TrimSpace(c.Narrative.OpenAIAPIKey)
	if c.Narrative.OpenAIAPIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Narrative.OpenAIAPIKey = strings.TrimSpace(value)
		}
	}
	c.Narrative.OpenAIModel = strings.TrimSpace(c.Narrative.OpenAIModel)
	if value, ok := os.LookupEnv("OPENAI_MODEL"); ok && strings.TrimSpace(value) != "" {
		c.Narrative.OpenAIModel = strings.TrimSpace(value)
	}
	if c.Narrative.OpenAIModel == "" {
		c.Narrative.OpenAIModel = defaultOpenAIModel
	}
	c.Narrative.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(c.Narrative.OpenAIBaseURL), "/")
	if c.Narrative.OpenAIBaseURL == "" {
		c.Narrative.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	c.Narrative.OllamaHost = strings.TrimRight(strings.TrimSpace(c.Narrative.OllamaHost), "/")
	if c.Narrative.OllamaHost == "" {
		if value, ok := os.LookupEnv("OLLAMA_HOST"); ok {
			c.Narrative.OllamaHost = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Narrative.OllamaModel = strings.TrimSpace(c.Narrative.OllamaModel)
	if value, ok := os.LookupEnv("OLLAMA_MODEL"); ok && strings.TrimSpace(value) != "" {
		c.Narrative.OllamaModel = strings.TrimSpace(value)
	}
	if c.Narrative.OllamaModel == "" {
		c.Narrative.OllamaModel = defaultOllamaModel
	}
	if c.Narrative.TimeoutSeconds <= 0 {
		c.Narrative.TimeoutSeconds = defaultNarrativeTimeout
	}
	c.Narrative.Style = strings.TrimSpace(c.Narrative.Style)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	dir := strings.TrimSpace(c.Logging.Dir)
	if dir == "" {
		dir = defaultLogDir
	}
	expanded, err := expandPath(dir)
	if err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	c.Logging.Dir = expanded
	return nil
}
