package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"sleeve/internal/config"
	"sleeve/internal/covers"
	"sleeve/internal/musicbrainz"
	"sleeve/internal/narrative"
	"sleeve/internal/search"
	"sleeve/internal/vibe"
)

// FromConfig wires the full pipeline (directory client, cover
// resolver, orchestrator, board builder, summarizer) from application
// configuration. Both binaries assemble the service this way.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("assemble service: config is required")
	}

	directory, err := musicbrainz.New(cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent, cfg.MusicBrainz.Timeout())
	if err != nil {
		return nil, fmt.Errorf("assemble musicbrainz client: %w", err)
	}

	archive, err := covers.NewArchive(cfg.CoverArt.ArchiveBaseURL, cfg.MusicBrainz.UserAgent, cfg.CoverArt.ArchiveTimeout())
	if err != nil {
		return nil, fmt.Errorf("assemble cover archive client: %w", err)
	}
	itunes, err := covers.NewITunes(cfg.CoverArt.ITunesBaseURL, cfg.CoverArt.ITunesTimeout())
	if err != nil {
		return nil, fmt.Errorf("assemble itunes client: %w", err)
	}
	resolver := covers.NewResolver(archive, itunes, directory, cfg.CoverArt.ReleaseProbeLimit, logger)

	searcher := search.NewService(directory, resolver, search.Options{
		ReleaseGroupCap: cfg.Search.ReleaseGroupCap,
		ListingLimit:    cfg.Search.ListingLimit,
	}, logger)

	boards := vibe.NewBuilder(resolver, cfg.MusicBrainz.UserAgent, logger,
		vibe.WithConcurrency(cfg.Vibe.Concurrency),
		vibe.WithHTTPClient(&http.Client{Timeout: cfg.CoverArt.ImageTimeout()}))

	narrator := narrative.NewSummarizer(narrative.Settings{
		Backend:       cfg.Narrative.Backend,
		OpenAIAPIKey:  cfg.Narrative.OpenAIAPIKey,
		OpenAIModel:   cfg.Narrative.OpenAIModel,
		OpenAIBaseURL: cfg.Narrative.OpenAIBaseURL,
		OllamaHost:    cfg.Narrative.OllamaHost,
		OllamaModel:   cfg.Narrative.OllamaModel,
		Timeout:       cfg.Narrative.Timeout(),
	}, logger)

	limits := Limits{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		BoardItems:   cfg.Vibe.MaxItems,
	}
	return NewService(searcher, boards, narrator, limits, cfg.Narrative.Style, logger), nil
}
