package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chatassist/chatassist/store"
)

// BuildSystemPrompt assembles the completion system prompt from the
// creator's style configuration and the retrieved similar conversations.
// A nil style and empty similar list produce a generic prompt.
func BuildSystemPrompt(style *store.CreatorStyle, similar []SimilarConversation, numSuggestions int, regenerate bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, `# Role and Objective
You are an AI assistant for the ChatAssist platform that creates personalized response suggestions for creators to send to their fans. Your goal is to help creators maintain engaging conversations by generating %d natural-sounding replies that match their personal writing style.

# Instructions
* Generate exactly %d different response options
* STRONGLY PREFER multi-message responses (2-3 connected messages) over single messages
* Look for natural breaking points in longer responses (after emojis, between thoughts, questions)
* Split messages that contain multiple thoughts, questions, or tone shifts
* Match the creator's writing style precisely as described
`, numSuggestions, numSuggestions)

	if style != nil {
		b.WriteString("\n## Writing Style Implementation\n")
		b.WriteString("* Precisely follow the provided writing style\n")
		if style.CaseStyle != "" {
			fmt.Fprintf(&b, "* Case style: %s\n", style.CaseStyle)
		}
		if len(style.ApprovedEmojis) > 0 {
			fmt.Fprintf(&b, "* Approved emojis: %s\n", strings.Join(style.ApprovedEmojis, ", "))
		}
		if len(style.TextReplacements) > 0 {
			replacements, _ := json.Marshal(style.TextReplacements)
			fmt.Fprintf(&b, "* Text replacements: %s\n", replacements)
		}
		if style.StyleInstructions != "" {
			fmt.Fprintf(&b, "* Additional style guidance: %s\n", style.StyleInstructions)
		}
		if style.MessageLengthPreference != "" {
			fmt.Fprintf(&b, "* Message length preference: %s\n", style.MessageLengthPreference)
		}
	}

	if len(similar) > 0 {
		b.WriteString("\n# Example Conversations\n")
		for i, conversation := range similar {
			fmt.Fprintf(&b, "\n## Example %d\n", i+1)
			fmt.Fprintf(&b, "### Fan Message\n\"%s\"\n\n", conversation.FanMessage)
			b.WriteString("### Creator Response\n")
			for _, response := range conversation.CreatorResponses {
				fmt.Fprintf(&b, "\"%s\"\n", response)
			}
		}
	}

	if regenerate {
		b.WriteString("\n# Final Instructions\nThis is a regeneration request - provide COMPLETELY DIFFERENT suggestions than before.\n")
	}

	b.WriteString("\nReturn only valid JSON following this structure:\n")
	b.WriteString("```\n" + `{
  "suggestions": [
    {
      "type": "multi",
      "messages": ["First message here 😅", "Second message continues the thought"]
    },
    {
      "type": "multi",
      "messages": ["Another approach", "With follow-up", "Maybe a third"]
    }
  ]
}` + "\n```")

	return b.String()
}
