package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chatassist/chatassist/internal/util"
	"github.com/chatassist/chatassist/plugin/ai"
	"github.com/chatassist/chatassist/plugin/ai/suggest"
	"github.com/chatassist/chatassist/server/auth"
	"github.com/chatassist/chatassist/server/finops"
	"github.com/chatassist/chatassist/server/internal/apierrors"
	"github.com/chatassist/chatassist/store"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SuggestionRequest struct {
	Message     string        `json:"message"`
	ChatHistory []ChatMessage `json:"chat_history"`
	Regenerate  bool          `json:"regenerate"`
	// CreatorID overrides the creator selected in the user's preferences.
	CreatorID string `json:"creator_id"`
}

type SuggestionResponse struct {
	Suggestions []*suggest.Suggestion `json:"suggestions"`
}

type SuggestionStatsResponse struct {
	TotalConversations int64  `json:"total_conversations"`
	LatestTimestamp    *int64 `json:"latest_timestamp"`
}

type ClearSuggestionsResponse struct {
	Success      bool   `json:"success"`
	ClearedCount int64  `json:"cleared_count"`
	Message      string `json:"message"`
}

// GetSuggestions generates reply suggestions for a fan message using the
// caller's OpenAI key, model, and selected creator.
func (s *APIV1Service) GetSuggestions(c echo.Context) error {
	ctx := c.Request().Context()
	request := &SuggestionRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if strings.TrimSpace(request.Message) == "" {
		return apierrors.InvalidArgument("message is required")
	}

	preferences, err := s.getOrCreatePreferences(ctx, auth.GetUserID(ctx))
	if err != nil {
		return apierrors.Internal("failed to load user preferences", err)
	}
	apiKey := preferences.OpenAIAPIKey
	if apiKey == "" {
		// The server-wide key, when configured, backs users without one.
		apiKey = s.Profile.OpenAIAPIKey
	}
	if apiKey == "" {
		return apierrors.PermissionDenied("OpenAI API key not configured. Please update your preferences.")
	}

	creatorID := ""
	if request.CreatorID != "" {
		if !util.ValidateUUID(request.CreatorID) {
			return apierrors.InvalidArgument("invalid creator id")
		}
		creator, err := s.Store.GetCreator(ctx, &store.FindCreator{ID: &request.CreatorID})
		if err != nil {
			return apierrors.Internal("failed to get creator", err)
		}
		if creator == nil {
			return apierrors.NotFound("Creator not found")
		}
		creatorID = creator.ID
	} else if preferences.SelectedCreatorID != nil {
		creatorID = *preferences.SelectedCreatorID
	}

	numSuggestions := int(preferences.NumSuggestions)
	if numSuggestions < 1 {
		numSuggestions = store.DefaultNumSuggestions
	}
	chatHistory := make([]ai.Message, 0, len(request.ChatHistory))
	for _, message := range request.ChatHistory {
		chatHistory = append(chatHistory, ai.Message{Role: message.Role, Content: message.Content})
	}

	start := time.Now()
	suggestions, err := s.Suggester.Suggest(ctx, &suggest.Request{
		APIKey:         apiKey,
		Model:          preferences.ModelName,
		FanMessage:     request.Message,
		ChatHistory:    chatHistory,
		NumSuggestions: numSuggestions,
		Regenerate:     request.Regenerate,
		CreatorID:      creatorID,
	})
	if err != nil {
		if ai.IsAuthError(err) {
			return apierrors.PermissionDenied("Invalid OpenAI API key")
		}
		return apierrors.Internal("failed to generate suggestions", err)
	}
	s.recordUsage(preferences.ModelName, request, suggestions, time.Since(start))
	return c.JSON(http.StatusOK, &SuggestionResponse{Suggestions: suggestions})
}

// recordUsage estimates what a generation call cost. Token counts come from
// text lengths; the composed system prompt is not visible here, so prompt
// totals under-count it.
func (s *APIV1Service) recordUsage(model string, request *SuggestionRequest, suggestions []*suggest.Suggestion, latency time.Duration) {
	if model == "" {
		model = s.Profile.DefaultModel
	}
	promptChars := len(request.Message)
	for _, message := range request.ChatHistory {
		promptChars += len(message.Content)
	}
	completionChars := 0
	for _, suggestion := range suggestions {
		for _, message := range suggestion.Messages {
			completionChars += len(message)
		}
	}
	s.Usage.Record(&finops.Usage{
		Model:            model,
		PromptTokens:     finops.EstimateTokens(promptChars),
		CompletionTokens: finops.EstimateTokens(completionChars),
		EmbeddingModel:   s.Profile.EmbeddingModel,
		EmbeddingTokens:  finops.EstimateTokens(len(request.Message)),
		Latency:          latency,
		SuggestionCount:  len(suggestions),
	})
}

// GetSuggestionStats reports how many conversations are stored for
// retrieval, optionally scoped to one creator via ?creator_id=.
func (s *APIV1Service) GetSuggestionStats(c echo.Context) error {
	ctx := c.Request().Context()
	find, err := conversationFilterFromQuery(c)
	if err != nil {
		return err
	}
	stats, err := s.Store.GetConversationStats(ctx, find)
	if err != nil {
		return apierrors.Internal("failed to get conversation stats", err)
	}
	return c.JSON(http.StatusOK, &SuggestionStatsResponse{
		TotalConversations: stats.TotalConversations,
		LatestTimestamp:    stats.LatestTs,
	})
}

// ClearSuggestions deletes stored conversations, optionally scoped to one
// creator via ?creator_id=.
func (s *APIV1Service) ClearSuggestions(c echo.Context) error {
	ctx := c.Request().Context()
	find, err := conversationFilterFromQuery(c)
	if err != nil {
		return err
	}
	count, err := s.Store.DeleteConversations(ctx, &store.DeleteConversation{CreatorID: find.CreatorID})
	if err != nil {
		return apierrors.Internal("failed to clear conversations", err)
	}
	return c.JSON(http.StatusOK, &ClearSuggestionsResponse{
		Success:      true,
		ClearedCount: count,
		Message:      fmt.Sprintf("Successfully cleared %d conversations", count),
	})
}

func conversationFilterFromQuery(c echo.Context) (*store.FindConversation, error) {
	find := &store.FindConversation{}
	if creatorID := c.QueryParam("creator_id"); creatorID != "" {
		if !util.ValidateUUID(creatorID) {
			return nil, apierrors.InvalidArgument("invalid creator id")
		}
		find.CreatorID = &creatorID
	}
	return find, nil
}
