package store

import (
	"context"
	"fmt"
	"time"

	"github.com/chatassist/chatassist/internal/profile"
	"github.com/chatassist/chatassist/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	userCache            *cache.Cache // cache for users
	userPreferencesCache *cache.Cache // cache for user preferences
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:               driver,
		profile:              profile,
		cacheConfig:          cacheConfig,
		userCache:            cache.New(cacheConfig),
		userPreferencesCache: cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.userCache.Close()
	s.userPreferencesCache.Close()

	return s.driver.Close()
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user-%d", id)
}

func userPreferencesCacheKey(userID int32) string {
	return fmt.Sprintf("user-preferences-%d", userID)
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.Email == nil {
		if value, ok := s.userCache.Get(ctx, userCacheKey(*find.ID)); ok {
			if user, ok := value.(*User); ok {
				return user, nil
			}
		}
	}

	user, err := s.driver.GetUser(ctx, find)
	if err != nil {
		return nil, err
	}
	if user != nil {
		s.userCache.Set(ctx, userCacheKey(user.ID), user)
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) CreateUserPreferences(ctx context.Context, create *UserPreferences) (*UserPreferences, error) {
	preferences, err := s.driver.CreateUserPreferences(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userPreferencesCache.Set(ctx, userPreferencesCacheKey(preferences.UserID), preferences)
	return preferences, nil
}

func (s *Store) GetUserPreferences(ctx context.Context, find *FindUserPreferences) (*UserPreferences, error) {
	if find.UserID != nil {
		if value, ok := s.userPreferencesCache.Get(ctx, userPreferencesCacheKey(*find.UserID)); ok {
			if preferences, ok := value.(*UserPreferences); ok {
				return preferences, nil
			}
		}
	}

	preferences, err := s.driver.GetUserPreferences(ctx, find)
	if err != nil {
		return nil, err
	}
	if preferences != nil {
		s.userPreferencesCache.Set(ctx, userPreferencesCacheKey(preferences.UserID), preferences)
	}
	return preferences, nil
}

func (s *Store) UpdateUserPreferences(ctx context.Context, update *UpdateUserPreferences) (*UserPreferences, error) {
	preferences, err := s.driver.UpdateUserPreferences(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userPreferencesCache.Set(ctx, userPreferencesCacheKey(preferences.UserID), preferences)
	return preferences, nil
}

func (s *Store) CreateCreator(ctx context.Context, create *Creator) (*Creator, error) {
	return s.driver.CreateCreator(ctx, create)
}

func (s *Store) GetCreator(ctx context.Context, find *FindCreator) (*Creator, error) {
	return s.driver.GetCreator(ctx, find)
}

func (s *Store) ListCreators(ctx context.Context, find *FindCreator) ([]*Creator, error) {
	return s.driver.ListCreators(ctx, find)
}

func (s *Store) CountCreators(ctx context.Context, find *FindCreator) (int64, error) {
	return s.driver.CountCreators(ctx, find)
}

func (s *Store) UpdateCreator(ctx context.Context, update *UpdateCreator) (*Creator, error) {
	return s.driver.UpdateCreator(ctx, update)
}

func (s *Store) DeleteCreator(ctx context.Context, delete *DeleteCreator) error {
	if err := s.driver.DeleteCreator(ctx, delete); err != nil {
		return err
	}
	// Cascades may clear selected_creator_id on preference rows.
	s.userPreferencesCache.Purge(ctx)
	return nil
}

func (s *Store) GetCreatorStyle(ctx context.Context, find *FindCreatorStyle) (*CreatorStyle, error) {
	return s.driver.GetCreatorStyle(ctx, find)
}

func (s *Store) UpsertCreatorStyle(ctx context.Context, upsert *UpsertCreatorStyle) (*CreatorStyle, error) {
	return s.driver.UpsertCreatorStyle(ctx, upsert)
}

func (s *Store) CreateStyleExample(ctx context.Context, create *StyleExample) (*StyleExample, error) {
	return s.driver.CreateStyleExample(ctx, create)
}

func (s *Store) ListStyleExamples(ctx context.Context, find *FindStyleExample) ([]*StyleExample, error) {
	return s.driver.ListStyleExamples(ctx, find)
}

func (s *Store) DeleteStyleExample(ctx context.Context, delete *DeleteStyleExample) error {
	return s.driver.DeleteStyleExample(ctx, delete)
}

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	return s.driver.CreateConversation(ctx, create)
}

func (s *Store) SearchSimilarConversations(ctx context.Context, opts *SearchConversationOptions) ([]*Conversation, []float64, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	return s.driver.SearchSimilarConversations(ctx, opts)
}

func (s *Store) GetConversationStats(ctx context.Context, find *FindConversation) (*ConversationStats, error) {
	return s.driver.GetConversationStats(ctx, find)
}

func (s *Store) DeleteConversations(ctx context.Context, delete *DeleteConversation) (int64, error) {
	return s.driver.DeleteConversations(ctx, delete)
}
