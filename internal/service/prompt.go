package service

import (
	"fmt"
	"strings"

	"github.com/pageza/ai-book/backend/internal/types"
)

// SystemInstruction is sent as the system message of every completion request
const SystemInstruction = "Respond with JSON only, no preamble."

// emptyPlaceholder stands in for an empty preference list
const emptyPlaceholder = "-"

const promptTemplate = `You are a book recommendation assistant. Give exactly %d book recommendations.
Favorite books: %s
Genres: %s
Authors: %s
Answer strictly as a JSON array of objects with the fields "title", "author" and "reason", for example:
[{"title":"...","author":"...","reason":"..."}, ...]
Do not add any text before or after the array.`

// BuildPrompt renders the user prompt for prefs. It has no side effects.
func BuildPrompt(prefs types.Preferences) string {
	return fmt.Sprintf(promptTemplate,
		types.MaxRecommendations,
		joinOrPlaceholder(prefs.Favorites),
		joinOrPlaceholder(prefs.Genres),
		joinOrPlaceholder(prefs.Authors),
	)
}

func joinOrPlaceholder(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return emptyPlaceholder
	}
	return strings.Join(kept, ", ")
}
