package suggest

import (
	"context"
	"testing"

	"github.com/chatassist/chatassist/plugin/ai"
	"github.com/chatassist/chatassist/store"
	"github.com/chatassist/chatassist/store/test"
)

// TestFindSimilar tests threshold filtering, ordering, and the result cap.
func TestFindSimilar(t *testing.T) {
	ctx := context.Background()
	st, _ := test.NewTestingStore(t)
	suggester := New(st, &ai.Config{})

	creator, err := st.CreateCreator(ctx, &store.Creator{ID: "11111111-1111-1111-1111-111111111111", Name: "Luna", Active: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	other, err := st.CreateCreator(ctx, &store.Creator{ID: "22222222-2222-2222-2222-222222222222", Name: "Nova", Active: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	conversations := []struct {
		id        string
		creatorID string
		fan       string
		embedding []float32
	}{
		{"a1111111-1111-1111-1111-111111111111", creator.ID, "exact match", []float32{1, 0, 0}},
		{"a2222222-2222-2222-2222-222222222222", creator.ID, "close match", []float32{0.9, 0.1, 0}},
		{"a3333333-3333-3333-3333-333333333333", creator.ID, "closer match", []float32{0.95, 0.05, 0}},
		{"a4444444-4444-4444-4444-444444444444", creator.ID, "decent match", []float32{0.8, 0.2, 0}},
		{"a5555555-5555-5555-5555-555555555555", creator.ID, "unrelated", []float32{0, 1, 0}},
		{"a6666666-6666-6666-6666-666666666666", other.ID, "other creator", []float32{1, 0, 0}},
	}
	for _, c := range conversations {
		if _, err := st.CreateConversation(ctx, &store.Conversation{
			ID:               c.id,
			CreatorID:        c.creatorID,
			FanMessage:       c.fan,
			CreatorResponses: []string{"reply"},
			Embedding:        c.embedding,
		}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	similar := suggester.findSimilar(ctx, creator.ID, []float32{1, 0, 0})

	if len(similar) != similarConversationLimit {
		t.Fatalf("Expected %d results, got %d", similarConversationLimit, len(similar))
	}
	if similar[0].FanMessage != "exact match" {
		t.Errorf("Expected best match first, got %q", similar[0].FanMessage)
	}
	for i := 1; i < len(similar); i++ {
		if similar[i].Similarity > similar[i-1].Similarity {
			t.Errorf("Results not sorted by similarity: %f after %f", similar[i].Similarity, similar[i-1].Similarity)
		}
	}
	for _, s := range similar {
		if s.Similarity <= similarityThreshold {
			t.Errorf("Result below threshold: %q at %f", s.FanMessage, s.Similarity)
		}
		if s.FanMessage == "other creator" {
			t.Error("Result leaked from another creator")
		}
	}
}

// TestStoreConversation tests that an accepted suggestion lands in the
// retrieval corpus and that write failures stay silent.
func TestStoreConversation(t *testing.T) {
	ctx := context.Background()
	st, _ := test.NewTestingStore(t)
	suggester := New(st, &ai.Config{})

	creator, err := st.CreateCreator(ctx, &store.Creator{ID: "11111111-1111-1111-1111-111111111111", Name: "Luna", Active: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	request := &Request{CreatorID: creator.ID, FanMessage: "hey!"}
	suggestion := &Suggestion{Type: TypeMulti, Messages: []string{"hii", "what's up?"}}
	suggester.storeConversation(ctx, request, suggestion, []float32{1, 0})

	stats, err := st.GetConversationStats(ctx, &store.FindConversation{CreatorID: &creator.ID})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.TotalConversations != 1 {
		t.Fatalf("Expected 1 stored conversation, got %d", stats.TotalConversations)
	}

	// A write against a missing creator fails the foreign key. The
	// pipeline treats that as non-fatal.
	badRequest := &Request{CreatorID: "99999999-9999-9999-9999-999999999999", FanMessage: "hey!"}
	suggester.storeConversation(ctx, badRequest, suggestion, []float32{1, 0})

	stats, err = st.GetConversationStats(ctx, &store.FindConversation{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.TotalConversations != 1 {
		t.Errorf("Expected the failed write to be dropped, total is %d", stats.TotalConversations)
	}
}
