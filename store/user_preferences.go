package store

// Default preference values applied when a row is first created.
const (
	DefaultModelName      = "gpt-3.5-turbo"
	DefaultNumSuggestions = 3
)

// UserPreferences holds per-user suggestion settings. Exactly one row per user.
type UserPreferences struct {
	UserID            int32
	SelectedCreatorID *string // creator UUID, nil when none selected
	OpenAIAPIKey      string
	ModelName         string
	NumSuggestions    int32
	CreatedTs         int64
	UpdatedTs         int64
}

// FindUserPreferences specifies the conditions for finding user preferences.
type FindUserPreferences struct {
	UserID *int32
}

// UpdateUserPreferences specifies the fields to update. Nil fields keep their
// stored value (coalesce semantics).
type UpdateUserPreferences struct {
	UserID            int32
	SelectedCreatorID *string
	OpenAIAPIKey      *string
	ModelName         *string
	NumSuggestions    *int32
}
