// Package test provides an in-memory store.Driver so service logic can be
// exercised without a database. Cascade behavior mirrors the schema's
// foreign keys.
package test

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/internal/profile"
	"github.com/chatassist/chatassist/store"
)

// FakeDriver implements store.Driver entirely in memory.
type FakeDriver struct {
	mu sync.Mutex

	// Now supplies row timestamps. Tests replace it when they need
	// deterministic ordering.
	Now func() int64

	userSeq       int32
	users         map[int32]*store.User
	preferences   map[int32]*store.UserPreferences
	creators      map[string]*store.Creator
	styles        map[string]*store.CreatorStyle
	examples      []*store.StyleExample
	conversations []*store.Conversation
}

// NewFakeDriver returns an empty in-memory driver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Now:         func() int64 { return time.Now().Unix() },
		users:       map[int32]*store.User{},
		preferences: map[int32]*store.UserPreferences{},
		creators:    map[string]*store.Creator{},
		styles:      map[string]*store.CreatorStyle{},
	}
}

// NewTestingStore returns a store backed by a fresh FakeDriver, plus the
// driver itself for tests that need to reach behind the facade.
func NewTestingStore(t *testing.T) (*store.Store, *FakeDriver) {
	driver := NewFakeDriver()
	st := store.New(driver, &profile.Profile{Mode: "dev", Driver: "postgres"})
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st, driver
}

func (d *FakeDriver) GetDB() *sql.DB {
	return nil
}

func (d *FakeDriver) Close() error {
	return nil
}

func (d *FakeDriver) IsInitialized(ctx context.Context) (bool, error) {
	return true, nil
}

func (d *FakeDriver) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, user := range d.users {
		if user.Email == create.Email {
			return nil, errors.New("duplicate key value violates unique constraint")
		}
	}

	d.userSeq++
	user := &store.User{
		ID:           d.userSeq,
		Email:        create.Email,
		PasswordHash: create.PasswordHash,
		CreatedTs:    d.Now(),
	}
	d.users[user.ID] = user
	return copyUser(user), nil
}

func (d *FakeDriver) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, user := range d.users {
		if find.ID != nil && user.ID != *find.ID {
			continue
		}
		if find.Email != nil && user.Email != *find.Email {
			continue
		}
		return copyUser(user), nil
	}
	return nil, nil
}

func (d *FakeDriver) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[update.ID]
	if !ok {
		return nil, errors.New("failed to update user")
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.LastLoginTs != nil {
		user.LastLoginTs = *update.LastLoginTs
	}
	return copyUser(user), nil
}

func (d *FakeDriver) CreateUserPreferences(ctx context.Context, create *store.UserPreferences) (*store.UserPreferences, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[create.UserID]; !ok {
		return nil, errors.New("violates foreign key constraint")
	}
	if existing, ok := d.preferences[create.UserID]; ok {
		return copyPreferences(existing), nil
	}

	preferences := &store.UserPreferences{
		UserID:            create.UserID,
		SelectedCreatorID: create.SelectedCreatorID,
		OpenAIAPIKey:      create.OpenAIAPIKey,
		ModelName:         create.ModelName,
		NumSuggestions:    create.NumSuggestions,
		CreatedTs:         d.Now(),
		UpdatedTs:         d.Now(),
	}
	if preferences.ModelName == "" {
		preferences.ModelName = store.DefaultModelName
	}
	if preferences.NumSuggestions <= 0 {
		preferences.NumSuggestions = store.DefaultNumSuggestions
	}
	d.preferences[preferences.UserID] = preferences
	return copyPreferences(preferences), nil
}

func (d *FakeDriver) GetUserPreferences(ctx context.Context, find *store.FindUserPreferences) (*store.UserPreferences, error) {
	if find.UserID == nil {
		return nil, errors.New("user_id is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	preferences, ok := d.preferences[*find.UserID]
	if !ok {
		return nil, nil
	}
	return copyPreferences(preferences), nil
}

func (d *FakeDriver) UpdateUserPreferences(ctx context.Context, update *store.UpdateUserPreferences) (*store.UserPreferences, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	preferences, ok := d.preferences[update.UserID]
	if !ok {
		return nil, errors.New("failed to update user preferences")
	}
	if update.SelectedCreatorID != nil {
		if *update.SelectedCreatorID == "" {
			preferences.SelectedCreatorID = nil
		} else {
			id := *update.SelectedCreatorID
			preferences.SelectedCreatorID = &id
		}
	}
	if update.OpenAIAPIKey != nil {
		preferences.OpenAIAPIKey = *update.OpenAIAPIKey
	}
	if update.ModelName != nil {
		preferences.ModelName = *update.ModelName
	}
	if update.NumSuggestions != nil {
		preferences.NumSuggestions = *update.NumSuggestions
	}
	preferences.UpdatedTs = d.Now()
	return copyPreferences(preferences), nil
}

func (d *FakeDriver) CreateCreator(ctx context.Context, create *store.Creator) (*store.Creator, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.creators[create.ID]; ok {
		return nil, errors.New("duplicate key value violates unique constraint")
	}
	creator := &store.Creator{
		ID:          create.ID,
		Name:        create.Name,
		Description: create.Description,
		AvatarURL:   create.AvatarURL,
		Active:      create.Active,
		CreatedTs:   d.Now(),
		UpdatedTs:   d.Now(),
	}
	d.creators[creator.ID] = creator
	return copyCreator(creator), nil
}

func (d *FakeDriver) GetCreator(ctx context.Context, find *store.FindCreator) (*store.Creator, error) {
	list, err := d.ListCreators(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *FakeDriver) ListCreators(ctx context.Context, find *store.FindCreator) ([]*store.Creator, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := []*store.Creator{}
	for _, creator := range d.creators {
		if find.ID != nil && creator.ID != *find.ID {
			continue
		}
		if find.Active != nil && creator.Active != *find.Active {
			continue
		}
		list = append(list, copyCreator(creator))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})

	if find.Limit > 0 {
		offset := find.Offset
		if offset > len(list) {
			offset = len(list)
		}
		list = list[offset:]
		if len(list) > find.Limit {
			list = list[:find.Limit]
		}
	}
	return list, nil
}

func (d *FakeDriver) CountCreators(ctx context.Context, find *store.FindCreator) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var count int64
	for _, creator := range d.creators {
		if find.Active != nil && creator.Active != *find.Active {
			continue
		}
		count++
	}
	return count, nil
}

func (d *FakeDriver) UpdateCreator(ctx context.Context, update *store.UpdateCreator) (*store.Creator, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	creator, ok := d.creators[update.ID]
	if !ok {
		return nil, nil
	}
	if update.Name != nil {
		creator.Name = *update.Name
	}
	if update.Description != nil {
		creator.Description = *update.Description
	}
	if update.AvatarURL != nil {
		creator.AvatarURL = *update.AvatarURL
	}
	if update.Active != nil {
		creator.Active = *update.Active
	}
	creator.UpdatedTs = d.Now()
	return copyCreator(creator), nil
}

func (d *FakeDriver) DeleteCreator(ctx context.Context, del *store.DeleteCreator) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.creators[del.ID]; !ok {
		return nil
	}

	// Mirror the schema's ON DELETE clauses.
	keptExamples := d.examples[:0]
	for _, example := range d.examples {
		if example.CreatorID != del.ID {
			keptExamples = append(keptExamples, example)
		}
	}
	d.examples = keptExamples

	keptConversations := d.conversations[:0]
	for _, conversation := range d.conversations {
		if conversation.CreatorID != del.ID {
			keptConversations = append(keptConversations, conversation)
		}
	}
	d.conversations = keptConversations

	for _, preferences := range d.preferences {
		if preferences.SelectedCreatorID != nil && *preferences.SelectedCreatorID == del.ID {
			preferences.SelectedCreatorID = nil
		}
	}

	delete(d.styles, del.ID)
	delete(d.creators, del.ID)
	return nil
}

func (d *FakeDriver) GetCreatorStyle(ctx context.Context, find *store.FindCreatorStyle) (*store.CreatorStyle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	style, ok := d.styles[find.CreatorID]
	if !ok {
		return nil, nil
	}
	return copyStyle(style), nil
}

func (d *FakeDriver) UpsertCreatorStyle(ctx context.Context, upsert *store.UpsertCreatorStyle) (*store.CreatorStyle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.creators[upsert.CreatorID]; !ok {
		return nil, errors.New("violates foreign key constraint")
	}

	style, ok := d.styles[upsert.CreatorID]
	if !ok {
		style = &store.CreatorStyle{
			CreatorID:          upsert.CreatorID,
			ApprovedEmojis:     []string{},
			TextReplacements:   map[string]string{},
			SentenceSeparators: []string{},
			PunctuationRules:   map[string]bool{},
			Abbreviations:      map[string]string{},
		}
		d.styles[upsert.CreatorID] = style
	}
	if upsert.ApprovedEmojis != nil {
		style.ApprovedEmojis = append([]string{}, *upsert.ApprovedEmojis...)
	}
	if upsert.CaseStyle != nil {
		style.CaseStyle = *upsert.CaseStyle
	}
	if upsert.TextReplacements != nil {
		style.TextReplacements = copyStringMap(*upsert.TextReplacements)
	}
	if upsert.SentenceSeparators != nil {
		style.SentenceSeparators = append([]string{}, *upsert.SentenceSeparators...)
	}
	if upsert.PunctuationRules != nil {
		style.PunctuationRules = copyBoolMap(*upsert.PunctuationRules)
	}
	if upsert.Abbreviations != nil {
		style.Abbreviations = copyStringMap(*upsert.Abbreviations)
	}
	if upsert.MessageLengthPreference != nil {
		style.MessageLengthPreference = *upsert.MessageLengthPreference
	}
	if upsert.StyleInstructions != nil {
		style.StyleInstructions = *upsert.StyleInstructions
	}
	if upsert.ToneRange != nil {
		style.ToneRange = *upsert.ToneRange
	}
	style.UpdatedTs = d.Now()
	return copyStyle(style), nil
}

func (d *FakeDriver) CreateStyleExample(ctx context.Context, create *store.StyleExample) (*store.StyleExample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.creators[create.CreatorID]; !ok {
		return nil, errors.New("violates foreign key constraint")
	}
	example := &store.StyleExample{
		ID:               create.ID,
		CreatorID:        create.CreatorID,
		FanMessage:       create.FanMessage,
		CreatorResponses: append([]string{}, create.CreatorResponses...),
		CreatedTs:        d.Now(),
	}
	d.examples = append(d.examples, example)
	return copyExample(example), nil
}

func (d *FakeDriver) ListStyleExamples(ctx context.Context, find *store.FindStyleExample) ([]*store.StyleExample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Newest first, later inserts winning timestamp ties.
	list := []*store.StyleExample{}
	for i := len(d.examples) - 1; i >= 0; i-- {
		example := d.examples[i]
		if find.ID != nil && example.ID != *find.ID {
			continue
		}
		if find.CreatorID != nil && example.CreatorID != *find.CreatorID {
			continue
		}
		list = append(list, copyExample(example))
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedTs > list[j].CreatedTs
	})

	if find.Limit > 0 {
		offset := find.Offset
		if offset > len(list) {
			offset = len(list)
		}
		list = list[offset:]
		if len(list) > find.Limit {
			list = list[:find.Limit]
		}
	}
	return list, nil
}

func (d *FakeDriver) DeleteStyleExample(ctx context.Context, delete *store.DeleteStyleExample) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.examples[:0]
	for _, example := range d.examples {
		if example.ID == delete.ID && example.CreatorID == delete.CreatorID {
			continue
		}
		kept = append(kept, example)
	}
	d.examples = kept
	return nil
}

func (d *FakeDriver) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.creators[create.CreatorID]; !ok {
		return nil, errors.New("violates foreign key constraint")
	}
	conversation := &store.Conversation{
		ID:               create.ID,
		CreatorID:        create.CreatorID,
		FanMessage:       create.FanMessage,
		CreatorResponses: append([]string{}, create.CreatorResponses...),
		Embedding:        append([]float32{}, create.Embedding...),
		CreatedTs:        d.Now(),
	}
	d.conversations = append(d.conversations, conversation)
	return copyConversation(conversation), nil
}

func (d *FakeDriver) SearchSimilarConversations(ctx context.Context, opts *store.SearchConversationOptions) ([]*store.Conversation, []float64, error) {
	if len(opts.Embedding) == 0 {
		return nil, nil, errors.New("embedding is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	type match struct {
		conversation *store.Conversation
		similarity   float64
	}
	matches := []match{}
	for _, conversation := range d.conversations {
		if conversation.CreatorID != opts.CreatorID {
			continue
		}
		similarity := cosineSimilarity(opts.Embedding, conversation.Embedding)
		if similarity > opts.MinSimilarity {
			matches = append(matches, match{copyConversation(conversation), similarity})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	list, similarities := []*store.Conversation{}, []float64{}
	for _, m := range matches {
		list, similarities = append(list, m.conversation), append(similarities, m.similarity)
	}
	return list, similarities, nil
}

func (d *FakeDriver) GetConversationStats(ctx context.Context, find *store.FindConversation) (*store.ConversationStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := &store.ConversationStats{}
	for _, conversation := range d.conversations {
		if find.CreatorID != nil && conversation.CreatorID != *find.CreatorID {
			continue
		}
		stats.TotalConversations++
		if stats.LatestTs == nil || conversation.CreatedTs > *stats.LatestTs {
			ts := conversation.CreatedTs
			stats.LatestTs = &ts
		}
	}
	return stats, nil
}

func (d *FakeDriver) DeleteConversations(ctx context.Context, delete *store.DeleteConversation) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var count int64
	kept := d.conversations[:0]
	for _, conversation := range d.conversations {
		if delete.CreatorID == nil || conversation.CreatorID == *delete.CreatorID {
			count++
			continue
		}
		kept = append(kept, conversation)
	}
	d.conversations = kept
	return count, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func copyUser(user *store.User) *store.User {
	clone := *user
	return &clone
}

func copyPreferences(preferences *store.UserPreferences) *store.UserPreferences {
	clone := *preferences
	if preferences.SelectedCreatorID != nil {
		id := *preferences.SelectedCreatorID
		clone.SelectedCreatorID = &id
	}
	return &clone
}

func copyCreator(creator *store.Creator) *store.Creator {
	clone := *creator
	return &clone
}

func copyStyle(style *store.CreatorStyle) *store.CreatorStyle {
	clone := *style
	clone.ApprovedEmojis = append([]string{}, style.ApprovedEmojis...)
	clone.SentenceSeparators = append([]string{}, style.SentenceSeparators...)
	clone.TextReplacements = copyStringMap(style.TextReplacements)
	clone.PunctuationRules = copyBoolMap(style.PunctuationRules)
	clone.Abbreviations = copyStringMap(style.Abbreviations)
	return &clone
}

func copyExample(example *store.StyleExample) *store.StyleExample {
	clone := *example
	clone.CreatorResponses = append([]string{}, example.CreatorResponses...)
	return &clone
}

func copyConversation(conversation *store.Conversation) *store.Conversation {
	clone := *conversation
	clone.CreatorResponses = append([]string{}, conversation.CreatorResponses...)
	clone.Embedding = append([]float32{}, conversation.Embedding...)
	return &clone
}

func copyStringMap(m map[string]string) map[string]string {
	clone := make(map[string]string, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

func copyBoolMap(m map[string]bool) map[string]bool {
	clone := make(map[string]bool, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
