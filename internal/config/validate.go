package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateMusicBrainz(); err != nil {
		return err
	}
	if err := c.validateCoverArt(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateNarrative(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	return nil
}

func (c *Config) validateMusicBrainz() error {
	if err := validateURL("musicbrainz.base_url", c.MusicBrainz.BaseURL); err != nil {
		return err
	}
	if c.MusicBrainz.UserAgent == "" {
		return errors.New("musicbrainz.user_agent must be set")
	}
	return nil
}

func (c *Config) validateCoverArt() error {
	if err := validateURL("coverart.archive_base_url", c.CoverArt.ArchiveBaseURL); err != nil {
		return err
	}
	return validateURL("coverart.itunes_base_url", c.CoverArt.ITunesBaseURL)
}

func (c *Config) validateSearch() error {
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	return nil
}

func (c *Config) validateNarrative() error {
	switch c.Narrative.Backend {
	case "", "openai", "ollama":
	default:
		return fmt.Errorf("narrative.backend: unsupported value %q (use openai or ollama)", c.Narrative.Backend)
	}
	if c.Narrative.Backend == "openai" && c.Narrative.OpenAIAPIKey == "" {
		return errors.New("narrative.openai_api_key is required when narrative.backend is openai. Set OPENAI_API_KEY or edit the config file")
	}
	if c.Narrative.Backend == "ollama" && c.Narrative.OllamaHost == "" {
		return errors.New("narrative.ollama_host is required when narrative.backend is ollama. Set OLLAMA_HOST or edit the config file")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func validateURL(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s must be set", field)
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s: invalid URL %q", field, value)
	}
	return nil
}
