package config

const (
	defaultBind             = "127.0.0.1:8622"
	defaultShutdownTimeout  = 5
	defaultMBBaseURL        = "https://musicbrainz.org/ws/2"
	defaultMBUserAgent      = "sleeve/0.4 (cover art search)"
	defaultMBTimeout        = 20
	defaultArchiveBaseURL   = "https://coverartarchive.org"
	defaultITunesBaseURL    = "https://itunes.apple.com/search"
	defaultArchiveTimeout   = 12
	defaultITunesTimeout    = 8
	defaultImageTimeout     = 15
	defaultReleaseProbes    = 10
	defaultSearchLimit      = 8
	defaultMaxLimit         = 50
	defaultReleaseGroupCap  = 24
	defaultListingLimit     = 12
	defaultVibeMaxItems     = 12
	defaultVibeConcurrency  = 6
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultOllamaModel      = "llama3.2"
	defaultNarrativeTimeout = 60
	defaultLogDir           = "~/.local/share/sleeve/logs"
	defaultLogLevel         = "info"
	defaultLogFormat        = "auto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:            defaultBind,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		MusicBrainz: MusicBrainz{
			BaseURL:        defaultMBBaseURL,
			UserAgent:      defaultMBUserAgent,
			TimeoutSeconds: defaultMBTimeout,
		},
		CoverArt: CoverArt{
			ArchiveBaseURL:        defaultArchiveBaseURL,
			ITunesBaseURL:         defaultITunesBaseURL,
			ArchiveTimeoutSeconds: defaultArchiveTimeout,
			ITunesTimeoutSeconds:  defaultITunesTimeout,
			ImageTimeoutSeconds:   defaultImageTimeout,
			ReleaseProbeLimit:     defaultReleaseProbes,
		},
		Search: Search{
			DefaultLimit:    defaultSearchLimit,
			MaxLimit:        defaultMaxLimit,
			ReleaseGroupCap: defaultReleaseGroupCap,
			ListingLimit:    defaultListingLimit,
		},
		Vibe: Vibe{
			MaxItems:    defaultVibeMaxItems,
			Concurrency: defaultVibeConcurrency,
		},
		Narrative: Narrative{
			OpenAIModel:    defaultOpenAIModel,
			OpenAIBaseURL:  defaultOpenAIBaseURL,
			OllamaModel:    defaultOllamaModel,
			TimeoutSeconds: defaultNarrativeTimeout,
		},
		Logging: Logging{
			Dir:    defaultLogDir,
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
