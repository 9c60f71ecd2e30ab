package suggest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suggestion types emitted by the model.
const (
	TypeSingle = "single"
	TypeMulti  = "multi"
)

// FallbackMessage is returned when the completion cannot be parsed at all.
const FallbackMessage = "I'd be happy to chat with you!"

// Suggestion is one suggested reply, split into consecutive messages.
type Suggestion struct {
	Type     string   `json:"type"`
	Messages []string `json:"messages"`
}

// ParseSuggestions extracts suggestions from a JSON-mode completion. Only
// the first requestedCount entries are considered, and entries with an
// unknown type or no usable messages are dropped. When the payload is valid
// JSON without a suggestions list, the whole content becomes one single
// suggestion; when it is not JSON at all, a canned reply is returned so the
// caller always has something to show.
func ParseSuggestions(content string, requestedCount int) []*Suggestion {
	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return []*Suggestion{{Type: TypeSingle, Messages: []string{FallbackMessage}}}
	}

	rawList, ok := payload["suggestions"].([]any)
	if !ok {
		return []*Suggestion{{Type: TypeSingle, Messages: []string{strings.TrimSpace(content)}}}
	}

	if requestedCount > 0 && len(rawList) > requestedCount {
		rawList = rawList[:requestedCount]
	}

	valid := []*Suggestion{}
	for _, raw := range rawList {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		entryType, _ := entry["type"].(string)
		if entryType != TypeSingle && entryType != TypeMulti {
			continue
		}
		rawMessages, ok := entry["messages"].([]any)
		if !ok {
			continue
		}

		messages := []string{}
		for _, message := range rawMessages {
			if text := coerceString(message); text != "" {
				messages = append(messages, text)
			}
		}
		if len(messages) > 0 {
			valid = append(valid, &Suggestion{Type: entryType, Messages: messages})
		}
	}
	return valid
}

func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
