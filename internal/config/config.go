package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains bind address and shutdown settings for the daemon.
type Server struct {
	Bind            string `toml:"bind"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
}

// MusicBrainz contains settings for the metadata directory client.
type MusicBrainz struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the metadata request timeout as a duration.
func (m MusicBrainz) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// CoverArt contains settings for the cover archive and the iTunes
// fallback index.
type CoverArt struct {
	ArchiveBaseURL        string `toml:"archive_base_url"`
	ITunesBaseURL         string `toml:"itunes_base_url"`
	ArchiveTimeoutSeconds int    `toml:"archive_timeout_seconds"`
	ITunesTimeoutSeconds  int    `toml:"itunes_timeout_seconds"`
	ImageTimeoutSeconds   int    `toml:"image_timeout_seconds"`
	ReleaseProbeLimit     int    `toml:"release_probe_limit"`
}

// ArchiveTimeout returns the cover archive request timeout.
func (c CoverArt) ArchiveTimeout() time.Duration {
	return time.Duration(c.ArchiveTimeoutSeconds) * time.Second
}

// ITunesTimeout returns the iTunes search request timeout.
func (c CoverArt) ITunesTimeout() time.Duration {
	return time.Duration(c.ITunesTimeoutSeconds) * time.Second
}

// ImageTimeout returns the image download timeout.
func (c CoverArt) ImageTimeout() time.Duration {
	return time.Duration(c.ImageTimeoutSeconds) * time.Second
}

// Search contains limits for the cover art search pipeline.
type Search struct {
	DefaultLimit    int `toml:"default_limit"`
	MaxLimit        int `toml:"max_limit"`
	ReleaseGroupCap int `toml:"release_group_cap"`
	ListingLimit    int `toml:"listing_limit"`
}

// Vibe contains limits for the vibe board builder.
type Vibe struct {
	MaxItems    int `toml:"max_items"`
	Concurrency int `toml:"concurrency"`
}

// Narrative contains LLM backend selection for board summaries.
// OpenAI wins when both backends are configured; set backend to force
// one explicitly.
type Narrative struct {
	Backend        string `toml:"backend"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	OpenAIModel    string `toml:"openai_model"`
	OpenAIBaseURL  string `toml:"openai_base_url"`
	OllamaHost     string `toml:"ollama_host"`
	OllamaModel    string `toml:"ollama_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Style          string `toml:"style"`
}

// Timeout returns the narrative request timeout.
func (n Narrative) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// Logging contains configuration for log output.
type Logging struct {
	Dir    string `toml:"dir"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for sleeve.
//
// Configuration sections by subsystem:
//   - Server: daemon bind address and shutdown behaviour
//   - MusicBrainz: metadata directory connection settings
//   - CoverArt: cover archive and iTunes fallback settings
//   - Search: result limits and release-group caps
//   - Vibe: board size and fan-out concurrency
//   - Narrative: LLM backend selection and prompt style
//   - Logging: log directory, level, and format
type Config struct {
	Server      Server      `toml:"server"`
	MusicBrainz MusicBrainz `toml:"musicbrainz"`
	CoverArt    CoverArt    `toml:"coverart"`
	Search      Search      `toml:"search"`
	Vibe        Vibe        `toml:"vibe"`
	Narrative   Narrative   `toml:"narrative"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sleeve/config.toml")
}

// Load locates, parses, and validates a configuration file. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sleeve.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.Dir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Logging.Dir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other
// packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified
// location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
