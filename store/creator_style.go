package store

// CreatorStyle is the structured writing-style configuration of a creator.
// At most one row per creator. The JSON columns map to typed structures so
// malformed rule sets are rejected at the boundary instead of stored opaquely.
type CreatorStyle struct {
	CreatorID               string // UUID, primary key
	ApprovedEmojis          []string
	CaseStyle               string
	TextReplacements        map[string]string
	SentenceSeparators      []string
	PunctuationRules        map[string]bool
	Abbreviations           map[string]string
	MessageLengthPreference string
	StyleInstructions       string
	ToneRange               string
	UpdatedTs               int64
}

// FindCreatorStyle specifies the conditions for finding a creator style.
type FindCreatorStyle struct {
	CreatorID string
}

// UpsertCreatorStyle inserts a style row or merges into the existing one.
// Nil fields keep their stored value; a non-nil empty slice or map clears
// the stored value.
type UpsertCreatorStyle struct {
	CreatorID               string
	ApprovedEmojis          *[]string
	CaseStyle               *string
	TextReplacements        *map[string]string
	SentenceSeparators      *[]string
	PunctuationRules        *map[string]bool
	Abbreviations           *map[string]string
	MessageLengthPreference *string
	StyleInstructions       *string
	ToneRange               *string
}
