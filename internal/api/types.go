package api

import (
	"sleeve/internal/router"
	"sleeve/internal/search"
)

// Version is stamped into server info blocks and tool descriptors.
const Version = "0.4.0"

// SearchResponse is the envelope returned by the search endpoint and
// the search_cover_art tool.
type SearchResponse struct {
	Query   string               `json:"query"`
	Routed  router.RoutedQuery   `json:"routed"`
	Results []search.CoverResult `json:"results"`
	Debug   *search.Debug        `json:"debug,omitempty"`
}

// ListingResponse carries the discovery listing for the search tool.
type ListingResponse struct {
	Results []search.ListingItem `json:"results"`
}

// NarrativeResponse carries the generated board narrative.
type NarrativeResponse struct {
	Narrative string `json:"narrative"`
}
