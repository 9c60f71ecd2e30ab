package v1

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/chatassist/chatassist/store"
)

// Pagination caps. page_size falls back to the default when missing or
// out of range.
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// User is the public view of an account. The password hash never appears here.
type User struct {
	ID        int32  `json:"id"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
	LastLogin int64  `json:"last_login,omitempty"`
}

// UserPreferences mirrors the preference row for a user.
type UserPreferences struct {
	UserID            int32   `json:"user_id"`
	SelectedCreatorID *string `json:"selected_creator_id"`
	OpenAIAPIKey      string  `json:"openai_api_key"`
	ModelName         string  `json:"model_name"`
	NumSuggestions    int32   `json:"num_suggestions"`
}

// Creator is the public view of a creator. Style and Examples are populated
// only on the detail endpoint.
type Creator struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	AvatarURL   string          `json:"avatar_url"`
	Active      bool            `json:"active"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
	Style       *CreatorStyle   `json:"style,omitempty"`
	Examples    []*StyleExample `json:"examples,omitempty"`
}

// CreatorStyle is the writing-style configuration of a creator.
type CreatorStyle struct {
	CreatorID               string            `json:"creator_id"`
	ApprovedEmojis          []string          `json:"approved_emojis"`
	CaseStyle               string            `json:"case_style"`
	TextReplacements        map[string]string `json:"text_replacements"`
	SentenceSeparators      []string          `json:"sentence_separators"`
	PunctuationRules        map[string]bool   `json:"punctuation_rules"`
	Abbreviations           map[string]string `json:"abbreviations"`
	MessageLengthPreference string            `json:"message_length_preference"`
	StyleInstructions       string            `json:"style_instructions"`
	ToneRange               string            `json:"tone_range"`
	UpdatedAt               int64             `json:"updated_at"`
}

// StyleExample is a recorded fan-message/creator-response pair.
type StyleExample struct {
	ID               string   `json:"id"`
	CreatorID        string   `json:"creator_id"`
	FanMessage       string   `json:"fan_message"`
	CreatorResponses []string `json:"creator_responses"`
	CreatedAt        int64    `json:"created_at"`
}

func convertUserFromStore(user *store.User) *User {
	return &User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedTs,
		LastLogin: user.LastLoginTs,
	}
}

func convertUserPreferencesFromStore(preferences *store.UserPreferences) *UserPreferences {
	return &UserPreferences{
		UserID:            preferences.UserID,
		SelectedCreatorID: preferences.SelectedCreatorID,
		OpenAIAPIKey:      preferences.OpenAIAPIKey,
		ModelName:         preferences.ModelName,
		NumSuggestions:    preferences.NumSuggestions,
	}
}

func convertCreatorFromStore(creator *store.Creator) *Creator {
	return &Creator{
		ID:          creator.ID,
		Name:        creator.Name,
		Description: creator.Description,
		AvatarURL:   creator.AvatarURL,
		Active:      creator.Active,
		CreatedAt:   creator.CreatedTs,
		UpdatedAt:   creator.UpdatedTs,
	}
}

func convertCreatorStyleFromStore(style *store.CreatorStyle) *CreatorStyle {
	return &CreatorStyle{
		CreatorID:               style.CreatorID,
		ApprovedEmojis:          style.ApprovedEmojis,
		CaseStyle:               style.CaseStyle,
		TextReplacements:        style.TextReplacements,
		SentenceSeparators:      style.SentenceSeparators,
		PunctuationRules:        style.PunctuationRules,
		Abbreviations:           style.Abbreviations,
		MessageLengthPreference: style.MessageLengthPreference,
		StyleInstructions:       style.StyleInstructions,
		ToneRange:               style.ToneRange,
		UpdatedAt:               style.UpdatedTs,
	}
}

func convertStyleExampleFromStore(example *store.StyleExample) *StyleExample {
	return &StyleExample{
		ID:               example.ID,
		CreatorID:        example.CreatorID,
		FanMessage:       example.FanMessage,
		CreatorResponses: example.CreatorResponses,
		CreatedAt:        example.CreatedTs,
	}
}

// extractPagination reads page/page_size query parameters, clamping them to
// sane values. Invalid or missing values fall back to the defaults.
func extractPagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v >= 1 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
