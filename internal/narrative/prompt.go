package narrative

import "strings"

const systemPrompt = "You are a concise, evocative curator of album-art mood boards. " +
	"Given clustered groups with color palettes and short captions, write a single paragraph (80–140 words) " +
	"that captures the overall vibe. Mention contrasts between groups when relevant. Avoid track lists; " +
	"focus on atmosphere, palette, and era feelings."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func promptMessages(boardJSON, style string) []chatMessage {
	styleNote := "Write in a neutral, evocative style."
	if s := strings.TrimSpace(style); s != "" {
		styleNote = "Write in a " + s + " style."
	}
	userPrompt := styleNote + "\n\n" +
		"Input JSON (vibe_board):\n" + boardJSON + "\n\n" +
		"Return only the paragraph, no preamble, no markdown headers."
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
}
