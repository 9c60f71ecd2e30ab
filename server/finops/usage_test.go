package finops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{length: 0, want: 0},
		{length: -5, want: 0},
		{length: 1, want: 1},
		{length: 3, want: 1},
		{length: 4, want: 1},
		{length: 100, want: 25},
	}
	for _, test := range tests {
		require.Equal(t, test.want, EstimateTokens(test.length), "length %d", test.length)
	}
}

func TestEstimateCost(t *testing.T) {
	require.InDelta(t, 0.50, EstimateCost("gpt-3.5-turbo", 1_000_000, 0), 1e-9)
	require.InDelta(t, 2.00, EstimateCost("gpt-3.5-turbo", 1_000_000, 1_000_000), 1e-9)
	require.InDelta(t, 0.10, EstimateCost("text-embedding-ada-002", 1_000_000, 0), 1e-9)

	// Embedding models have no completion rate.
	require.InDelta(t, 0.10, EstimateCost("text-embedding-ada-002", 1_000_000, 1_000_000), 1e-9)
}

func TestEstimateCostModelAliases(t *testing.T) {
	// Dated releases price as their base model.
	require.InDelta(t,
		EstimateCost("gpt-4o", 10_000, 10_000),
		EstimateCost("gpt-4o-2024-08-06", 10_000, 10_000), 1e-9)

	// The longest prefix wins, so a mini release does not bill at the
	// full gpt-4o rate.
	require.InDelta(t,
		EstimateCost("gpt-4o-mini", 10_000, 10_000),
		EstimateCost("gpt-4o-mini-2024-07-18", 10_000, 10_000), 1e-9)

	// Unknown models bill at the default rate.
	require.InDelta(t,
		EstimateCost("gpt-3.5-turbo", 10_000, 10_000),
		EstimateCost("some-future-model", 10_000, 10_000), 1e-9)
}

func TestUsageTrackerRecord(t *testing.T) {
	tracker := NewUsageTracker()

	tracker.Record(&Usage{
		Model:            "gpt-3.5-turbo",
		PromptTokens:     1000,
		CompletionTokens: 200,
		EmbeddingModel:   "text-embedding-ada-002",
		EmbeddingTokens:  50,
		Latency:          100 * time.Millisecond,
		SuggestionCount:  3,
	})
	tracker.Record(&Usage{
		Model:            "gpt-3.5-turbo",
		PromptTokens:     500,
		CompletionTokens: 100,
		Latency:          300 * time.Millisecond,
		SuggestionCount:  3,
	})

	snapshot := tracker.Snapshot()
	require.Len(t, snapshot, 2)

	byModel := map[string]*ModelUsage{}
	for _, usage := range snapshot {
		byModel[usage.Model] = usage
	}

	chat := byModel["gpt-3.5-turbo"]
	require.NotNil(t, chat)
	require.Equal(t, int64(2), chat.Requests)
	require.Equal(t, int64(1500), chat.PromptTokens)
	require.Equal(t, int64(300), chat.CompletionTokens)
	require.InDelta(t, 0.50*1500/1e6+1.50*300/1e6, chat.EstimatedCost, 1e-9)
	require.InDelta(t, 200, chat.AvgLatencyMs, 1e-9)

	embedding := byModel["text-embedding-ada-002"]
	require.NotNil(t, embedding)
	require.Equal(t, int64(1), embedding.Requests)
	require.Equal(t, int64(50), embedding.PromptTokens)
	require.Equal(t, int64(0), embedding.CompletionTokens)

	require.InDelta(t, chat.EstimatedCost+embedding.EstimatedCost, tracker.TotalCost(), 1e-9)
}

func TestUsageTrackerIgnoresEmptyRecords(t *testing.T) {
	tracker := NewUsageTracker()

	tracker.Record(nil)
	tracker.Record(&Usage{PromptTokens: 100})

	require.Empty(t, tracker.Snapshot())
	require.Zero(t, tracker.TotalCost())
}

func TestUsageTrackerSnapshotOrder(t *testing.T) {
	tracker := NewUsageTracker()

	tracker.Record(&Usage{Model: "gpt-4o-mini", PromptTokens: 1000, CompletionTokens: 100})
	tracker.Record(&Usage{Model: "gpt-4", PromptTokens: 1000, CompletionTokens: 100})
	tracker.Record(&Usage{Model: "gpt-3.5-turbo", PromptTokens: 1000, CompletionTokens: 100})

	snapshot := tracker.Snapshot()
	require.Len(t, snapshot, 3)
	require.Equal(t, "gpt-4", snapshot[0].Model)
	require.Equal(t, "gpt-3.5-turbo", snapshot[1].Model)
	require.Equal(t, "gpt-4o-mini", snapshot[2].Model)
}
