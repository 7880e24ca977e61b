package covers

import (
	"context"
	"log/slog"
	"strings"

	"sleeve/internal/logging"
)

// Cover source identifiers recorded for debugging. Release-level hits
// use "release:<id>" instead.
const (
	SourceReleaseGroup      = "rg"
	SourceReleaseGroupImage = "rg-image"
	SourceITunes            = "itunes"
)

const defaultProbeLimit = 10

// Resolution is one successful cover lookup.
type Resolution struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// ReleaseLister enumerates release IDs inside a release group. The
// musicbrainz client satisfies it.
type ReleaseLister interface {
	ReleaseIDs(ctx context.Context, releaseGroupID string, limit int) ([]string, error)
}

// Resolver walks the cover-source chain in order: archive image list,
// archive size probes for the release group, archive size probes for
// each release, then iTunes. The first hit wins; every failure is a
// miss that advances the chain.
type Resolver struct {
	archive    *Archive
	itunes     *ITunes
	releases   ReleaseLister
	probeLimit int
	logger     *slog.Logger
}

// NewResolver assembles a resolver. probeLimit caps how many releases
// of a release group are probed (default 10).
func NewResolver(archive *Archive, itunes *ITunes, releases ReleaseLister, probeLimit int, logger *slog.Logger) *Resolver {
	if probeLimit <= 0 {
		probeLimit = defaultProbeLimit
	}
	return &Resolver{
		archive:    archive,
		itunes:     itunes,
		releases:   releases,
		probeLimit: probeLimit,
		logger:     logging.NewComponentLogger(logger, "covers"),
	}
}

// Resolve returns the first cover URL the chain produces for the
// release group, with its source. ok is false when every source missed.
func (r *Resolver) Resolve(ctx context.Context, releaseGroupID, artistName, releaseTitle string) (Resolution, bool) {
	if strings.TrimSpace(releaseGroupID) == "" {
		return Resolution{}, false
	}

	imageURL, err := r.archive.FrontImageURL(ctx, releaseGroupID)
	if err != nil {
		r.logger.Debug("image list miss",
			logging.String("release_group", releaseGroupID),
			logging.Error(err))
	}
	if imageURL != "" {
		return Resolution{URL: imageURL, Source: SourceReleaseGroup}, true
	}

	if final, ok := r.archive.ProbeReleaseGroup(ctx, releaseGroupID); ok {
		return Resolution{URL: final, Source: SourceReleaseGroupImage}, true
	}

	for _, releaseID := range r.releaseIDs(ctx, releaseGroupID) {
		if final, ok := r.archive.ProbeRelease(ctx, releaseID); ok {
			return Resolution{URL: final, Source: "release:" + releaseID}, true
		}
	}

	artwork, err := r.itunes.AlbumArtwork(ctx, artistName, releaseTitle)
	if err != nil {
		r.logger.Debug("itunes miss",
			logging.String("release_group", releaseGroupID),
			logging.String("artist", artistName),
			logging.String("title", releaseTitle),
			logging.Error(err))
		return Resolution{}, false
	}
	return Resolution{URL: artwork, Source: SourceITunes}, true
}

func (r *Resolver) releaseIDs(ctx context.Context, releaseGroupID string) []string {
	if r.releases == nil {
		return nil
	}
	ids, err := r.releases.ReleaseIDs(ctx, releaseGroupID, r.probeLimit)
	if err != nil {
		r.logger.Debug("release enumeration miss",
			logging.String("release_group", releaseGroupID),
			logging.Error(err))
		return nil
	}
	return ids
}
