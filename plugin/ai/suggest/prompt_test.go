package suggest

import (
	"strings"
	"testing"

	"github.com/chatassist/chatassist/store"
)

// TestBuildSystemPromptBase tests the generic prompt without style context.
func TestBuildSystemPromptBase(t *testing.T) {
	prompt := BuildSystemPrompt(nil, nil, 3, false)

	for _, want := range []string{
		"# Role and Objective",
		"generating 3 natural-sounding replies",
		"Generate exactly 3 different response options",
		"STRONGLY PREFER multi-message responses",
		`"suggestions": [`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "## Writing Style Implementation") {
		t.Error("Prompt should not contain a style section without a style")
	}
	if strings.Contains(prompt, "# Example Conversations") {
		t.Error("Prompt should not contain examples without similar conversations")
	}
	if strings.Contains(prompt, "regeneration request") {
		t.Error("Prompt should not contain the regeneration note")
	}
}

// TestBuildSystemPromptStyle tests that configured style fields appear.
func TestBuildSystemPromptStyle(t *testing.T) {
	style := &store.CreatorStyle{
		CreatorID:               "c1",
		CaseStyle:               "lowercase",
		ApprovedEmojis:          []string{"😅", "💕"},
		TextReplacements:        map[string]string{"you": "u"},
		StyleInstructions:       "keep it playful",
		MessageLengthPreference: "short",
	}

	prompt := BuildSystemPrompt(style, nil, 2, false)

	for _, want := range []string{
		"## Writing Style Implementation",
		"* Case style: lowercase",
		"* Approved emojis: 😅, 💕",
		`* Text replacements: {"you":"u"}`,
		"* Additional style guidance: keep it playful",
		"* Message length preference: short",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

// TestBuildSystemPromptEmptyStyleFields tests that zero-valued style fields
// stay out of the prompt.
func TestBuildSystemPromptEmptyStyleFields(t *testing.T) {
	prompt := BuildSystemPrompt(&store.CreatorStyle{CreatorID: "c1"}, nil, 2, false)

	if !strings.Contains(prompt, "## Writing Style Implementation") {
		t.Error("Prompt missing the style section")
	}
	for _, unwanted := range []string{"* Case style:", "* Approved emojis:", "* Text replacements:", "* Message length preference:"} {
		if strings.Contains(prompt, unwanted) {
			t.Errorf("Prompt should not contain %q for an empty style", unwanted)
		}
	}
}

// TestBuildSystemPromptExamples tests retrieved conversation formatting.
func TestBuildSystemPromptExamples(t *testing.T) {
	similar := []SimilarConversation{
		{FanMessage: "what are you up to?", CreatorResponses: []string{"just chilling", "wbu? 😊"}, Similarity: 0.9},
		{FanMessage: "miss you!", CreatorResponses: []string{"aww miss u too"}, Similarity: 0.8},
	}

	prompt := BuildSystemPrompt(nil, similar, 3, false)

	for _, want := range []string{
		"# Example Conversations",
		"## Example 1",
		"\"what are you up to?\"",
		"\"just chilling\"",
		"\"wbu? 😊\"",
		"## Example 2",
		"\"miss you!\"",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

// TestBuildSystemPromptRegenerate tests the regeneration note.
func TestBuildSystemPromptRegenerate(t *testing.T) {
	prompt := BuildSystemPrompt(nil, nil, 3, true)

	if !strings.Contains(prompt, "# Final Instructions") {
		t.Error("Prompt missing the final instructions section")
	}
	if !strings.Contains(prompt, "provide COMPLETELY DIFFERENT suggestions than before") {
		t.Error("Prompt missing the regeneration note")
	}
}
