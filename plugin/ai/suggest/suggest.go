// Package suggest generates fan-reply suggestions: it embeds the incoming
// message, retrieves similar past conversations, prompts the chat model in
// JSON mode, and feeds accepted suggestions back into the retrieval corpus.
package suggest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/chatassist/chatassist/plugin/ai"
	"github.com/chatassist/chatassist/plugin/ai/cache"
	"github.com/chatassist/chatassist/store"
)

const (
	// similarityThreshold is the minimum cosine similarity a stored
	// conversation needs to be quoted in the prompt.
	similarityThreshold = 0.7
	// similarConversationLimit caps how many conversations are quoted.
	similarConversationLimit = 3

	// maxConcurrentCompletions limits in-flight completion calls to keep
	// a burst of requests from exhausting the upstream quota at once.
	maxConcurrentCompletions = 4

	// embedCacheCapacity bounds the fan-message embedding cache. Vectors
	// are ~6KB at 1536 dimensions, so the worst case stays near 12MB.
	embedCacheCapacity = 2048
	embedCacheTTL      = time.Hour
)

// SimilarConversation is a retrieved past conversation quoted in the prompt.
type SimilarConversation struct {
	FanMessage       string
	CreatorResponses []string
	Similarity       float64
}

// Request carries one suggestion generation call. APIKey and Model are
// already resolved to the requesting user's settings.
type Request struct {
	APIKey         string
	Model          string
	FanMessage     string
	ChatHistory    []ai.Message
	NumSuggestions int
	Regenerate     bool
	// CreatorID scopes style and retrieval. Empty means no creator is
	// selected: suggestions still generate, without style or retrieval.
	CreatorID string
}

// Suggester runs the suggestion pipeline against the store.
type Suggester struct {
	store      *store.Store
	config     *ai.Config
	sem        *semaphore.Weighted
	embeddings *cache.EmbeddingCache
}

// New creates a Suggester sharing one completion semaphore and one embedding
// cache across requests.
func New(store *store.Store, config *ai.Config) *Suggester {
	return &Suggester{
		store:      store,
		config:     config,
		sem:        semaphore.NewWeighted(maxConcurrentCompletions),
		embeddings: cache.NewEmbeddingCache(embedCacheCapacity, embedCacheTTL),
	}
}

// Suggest generates suggestions for one fan message. Retrieval and corpus
// writes are best-effort: their failures are logged and the generation
// continues. Embedding and completion failures are returned to the caller.
func (s *Suggester) Suggest(ctx context.Context, req *Request) ([]*Suggestion, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	embeddingConfig := s.config.Embedding
	embeddingConfig.APIKey = req.APIKey
	embedder, err := ai.NewEmbeddingService(&embeddingConfig)
	if err != nil {
		return nil, err
	}

	llmConfig := s.config.LLM
	llmConfig.APIKey = req.APIKey
	if req.Model != "" {
		llmConfig.Model = req.Model
	}
	llm, err := ai.NewLLMService(&llmConfig)
	if err != nil {
		return nil, err
	}

	// The same fan message is re-embedded on every regeneration, so cache
	// vectors by model and message text.
	embedKey := cache.Key(embeddingConfig.Model, req.FanMessage)
	embedding, ok := s.embeddings.Get(embedKey)
	if !ok {
		embedding, err = embedder.Embed(ctx, req.FanMessage)
		if err != nil {
			return nil, err
		}
		s.embeddings.Set(embedKey, embedding)
	}

	var style *store.CreatorStyle
	similar := []SimilarConversation{}
	if req.CreatorID != "" {
		style, err = s.store.GetCreatorStyle(ctx, &store.FindCreatorStyle{CreatorID: req.CreatorID})
		if err != nil {
			return nil, err
		}
		similar = s.findSimilar(ctx, req.CreatorID, embedding)
	}

	messages := []ai.Message{{Role: ai.RoleSystem, Content: BuildSystemPrompt(style, similar, req.NumSuggestions, req.Regenerate)}}
	for _, message := range req.ChatHistory {
		role := ai.RoleAssistant
		if message.Role == ai.RoleUser {
			role = ai.RoleUser
		}
		messages = append(messages, ai.Message{Role: role, Content: message.Content})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: req.FanMessage})

	content, err := llm.ChatJSON(ctx, messages)
	if err != nil {
		return nil, err
	}
	suggestions := ParseSuggestions(content, req.NumSuggestions)

	// Accepted first suggestions seed future retrieval. Regenerations are
	// rejections of the previous output, so they are not stored.
	if req.CreatorID != "" && len(suggestions) > 0 && !req.Regenerate {
		s.storeConversation(ctx, req, suggestions[0], embedding)
	}

	return suggestions, nil
}

func (s *Suggester) findSimilar(ctx context.Context, creatorID string, embedding []float32) []SimilarConversation {
	conversations, similarities, err := s.store.SearchSimilarConversations(ctx, &store.SearchConversationOptions{
		CreatorID:     creatorID,
		Embedding:     embedding,
		Limit:         similarConversationLimit,
		MinSimilarity: similarityThreshold,
	})
	if err != nil {
		slog.Warn("similar conversation search failed", "creator_id", creatorID, "error", err)
		return []SimilarConversation{}
	}

	similar := make([]SimilarConversation, 0, len(conversations))
	for i, conversation := range conversations {
		similar = append(similar, SimilarConversation{
			FanMessage:       conversation.FanMessage,
			CreatorResponses: conversation.CreatorResponses,
			Similarity:       similarities[i],
		})
	}
	return similar
}

func (s *Suggester) storeConversation(ctx context.Context, req *Request, suggestion *Suggestion, embedding []float32) {
	_, err := s.store.CreateConversation(ctx, &store.Conversation{
		ID:               uuid.New().String(),
		CreatorID:        req.CreatorID,
		FanMessage:       req.FanMessage,
		CreatorResponses: suggestion.Messages,
		Embedding:        embedding,
	})
	if err != nil {
		slog.Warn("failed to store conversation", "creator_id", req.CreatorID, "error", err)
	}
}
