package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	GetUser(ctx context.Context, find *FindUser) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)

	// UserPreferences model related methods.
	CreateUserPreferences(ctx context.Context, create *UserPreferences) (*UserPreferences, error)
	GetUserPreferences(ctx context.Context, find *FindUserPreferences) (*UserPreferences, error)
	UpdateUserPreferences(ctx context.Context, update *UpdateUserPreferences) (*UserPreferences, error)

	// Creator model related methods.
	CreateCreator(ctx context.Context, create *Creator) (*Creator, error)
	GetCreator(ctx context.Context, find *FindCreator) (*Creator, error)
	ListCreators(ctx context.Context, find *FindCreator) ([]*Creator, error)
	CountCreators(ctx context.Context, find *FindCreator) (int64, error)
	UpdateCreator(ctx context.Context, update *UpdateCreator) (*Creator, error)
	DeleteCreator(ctx context.Context, delete *DeleteCreator) error

	// CreatorStyle model related methods.
	GetCreatorStyle(ctx context.Context, find *FindCreatorStyle) (*CreatorStyle, error)
	UpsertCreatorStyle(ctx context.Context, upsert *UpsertCreatorStyle) (*CreatorStyle, error)

	// StyleExample model related methods.
	CreateStyleExample(ctx context.Context, create *StyleExample) (*StyleExample, error)
	ListStyleExamples(ctx context.Context, find *FindStyleExample) ([]*StyleExample, error)
	DeleteStyleExample(ctx context.Context, delete *DeleteStyleExample) error

	// Conversation model related methods.
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	// SearchSimilarConversations returns conversations and their cosine
	// similarity scores, most similar first.
	SearchSimilarConversations(ctx context.Context, opts *SearchConversationOptions) ([]*Conversation, []float64, error)
	GetConversationStats(ctx context.Context, find *FindConversation) (*ConversationStats, error)
	// DeleteConversations returns the number of rows removed.
	DeleteConversations(ctx context.Context, delete *DeleteConversation) (int64, error)
}
