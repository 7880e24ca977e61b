package daemon

// Tool names shared by the JSON-RPC endpoint and the stdio server.
const (
	toolSearchCoverArt = "search_cover_art"
	toolSearch         = "search"
	toolFetch          = "fetch"
	toolVibeBoard      = "vibe_board"
	toolRagSummarize   = "rag_summarize"
)

// Wire-level limit contract for tool calls.
const (
	rpcDefaultLimit = 8
	rpcMaxLimit     = 50
)

// toolDescriptor describes one tool for tools/list responses.
type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func toolDescriptors() []toolDescriptor {
	return []toolDescriptor{
		{
			Name:        toolSearchCoverArt,
			Description: "Search album cover art for a free-form query like 'by radiohead' or 'show me covers from metal bands'.",
			InputSchema: map[string]any{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type":    "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Free-form prompt naming an artist or a genre.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of covers to return.",
						"minimum":     1,
						"maximum":     rpcMaxLimit,
						"default":     rpcDefaultLimit,
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
		{
			Name:        toolSearch,
			Description: "List release groups matching a query as id/title/url records for later fetch calls.",
			InputSchema: map[string]any{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type":    "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Free-form prompt naming an artist or a genre.",
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
		{
			Name:        toolFetch,
			Description: "Fetch the detail document for one release group returned by search.",
			InputSchema: map[string]any{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type":    "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Release group identifier from a search result.",
					},
				},
				"required":             []string{"id"},
				"additionalProperties": false,
			},
		},
		{
			Name:        toolVibeBoard,
			Description: "Build a palette-clustered vibe board of album covers for a query.",
			InputSchema: map[string]any{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type":    "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Free-form prompt naming an artist or a genre.",
					},
					"max_items": map[string]any{
						"type":        "integer",
						"description": "Maximum number of covers on the board.",
						"minimum":     1,
						"maximum":     24,
						"default":     12,
					},
					"debug": map[string]any{
						"type":        "boolean",
						"description": "Include per-item resolution records.",
						"default":     false,
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
		{
			Name:        toolRagSummarize,
			Description: "Generate a short narrative paragraph for a previously built vibe board.",
			InputSchema: map[string]any{
				"$schema": "http://json-schema.org/draft-07/schema#",
				"type":    "object",
				"properties": map[string]any{
					"board": map[string]any{
						"type":        "object",
						"description": "A board object as returned by vibe_board.",
					},
					"style": map[string]any{
						"type":        "string",
						"description": "Optional style hint for the narrative voice.",
					},
				},
				"required":             []string{"board"},
				"additionalProperties": false,
			},
		},
	}
}
