package store

// Conversation is a stored fan-message/suggested-response pair with its
// embedding vector. New suggestions retrieve the most similar past
// conversations of the same creator as few-shot context.
type Conversation struct {
	ID               string // UUID
	CreatorID        string // UUID
	FanMessage       string
	CreatorResponses []string
	Embedding        []float32
	CreatedTs        int64
}

// DefaultSearchLimit is the similarity search result cap applied when the
// caller does not set one.
const DefaultSearchLimit = 3

// SearchConversationOptions configures a vector similarity search.
type SearchConversationOptions struct {
	CreatorID string
	Embedding []float32
	// Limit caps the result count. Defaults to DefaultSearchLimit when zero.
	Limit int
	// MinSimilarity drops results below this cosine similarity.
	MinSimilarity float64
}

// ConversationStats summarizes stored conversations.
type ConversationStats struct {
	TotalConversations int64
	LatestTs           *int64
}

// FindConversation specifies the conditions for finding conversations.
type FindConversation struct {
	CreatorID *string
}

// DeleteConversation specifies which conversations to delete. A nil
// CreatorID deletes all of them.
type DeleteConversation struct {
	CreatorID *string
}
