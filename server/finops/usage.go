// Package finops tracks estimated OpenAI spend per model. The completion
// client discards upstream usage counts, so token counts are estimated from
// text length. Totals live in memory and reset on restart; this is a live
// view of where the money goes, not billing.
package finops

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// pricing holds dollars per million tokens.
type pricing struct {
	prompt     float64
	completion float64
}

// modelPricing lists published OpenAI rates. Unknown models bill at the
// gpt-3.5-turbo rate.
var modelPricing = map[string]pricing{
	"gpt-3.5-turbo":          {prompt: 0.50, completion: 1.50},
	"gpt-4":                  {prompt: 30, completion: 60},
	"gpt-4-turbo":            {prompt: 10, completion: 30},
	"gpt-4o":                 {prompt: 2.50, completion: 10},
	"gpt-4o-mini":            {prompt: 0.15, completion: 0.60},
	"text-embedding-ada-002": {prompt: 0.10},
	"text-embedding-3-small": {prompt: 0.02},
	"text-embedding-3-large": {prompt: 0.13},
}

var defaultPricing = pricing{prompt: 0.50, completion: 1.50}

// lookupPricing resolves a model name to its rate. Dated releases like
// "gpt-4o-2024-08-06" price as their base model; the longest prefix wins so
// "gpt-4o-mini-*" does not match "gpt-4o".
func lookupPricing(model string) pricing {
	if p, ok := modelPricing[model]; ok {
		return p
	}
	best := ""
	for base := range modelPricing {
		if strings.HasPrefix(model, base) && len(base) > len(best) {
			best = base
		}
	}
	if best != "" {
		return modelPricing[best]
	}
	return defaultPricing
}

// EstimateTokens approximates a token count from text length, at roughly
// four characters per token.
func EstimateTokens(length int) int {
	if length <= 0 {
		return 0
	}
	tokens := length / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

// EstimateCost returns the estimated dollar cost of one call against model.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	p := lookupPricing(model)
	return float64(promptTokens)*p.prompt/1e6 + float64(completionTokens)*p.completion/1e6
}

// Usage describes one suggestion generation call to record.
type Usage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	// EmbeddingModel and EmbeddingTokens cover the retrieval embedding made
	// for the same call.
	EmbeddingModel  string
	EmbeddingTokens int
	Latency         time.Duration
	SuggestionCount int
}

// ModelUsage is a snapshot of one model's accumulated totals.
type ModelUsage struct {
	Model            string  `json:"model"`
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	EstimatedCost    float64 `json:"estimated_cost"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
}

type modelTotals struct {
	requests         int64
	promptTokens     int64
	completionTokens int64
	cost             float64
	latency          time.Duration
}

// UsageTracker aggregates estimated spend per model.
type UsageTracker struct {
	logger *slog.Logger

	mu      sync.Mutex
	byModel map[string]*modelTotals
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		logger:  slog.Default(),
		byModel: make(map[string]*modelTotals),
	}
}

// Record adds one call's estimated usage. The chat and embedding models
// accrue separately since they price differently; latency is attributed to
// the chat model, which dominates it.
func (t *UsageTracker) Record(usage *Usage) {
	if usage == nil || usage.Model == "" {
		return
	}

	chatCost := EstimateCost(usage.Model, usage.PromptTokens, usage.CompletionTokens)
	embeddingCost := 0.0
	if usage.EmbeddingModel != "" && usage.EmbeddingTokens > 0 {
		embeddingCost = EstimateCost(usage.EmbeddingModel, usage.EmbeddingTokens, 0)
	}

	t.mu.Lock()
	chat := t.totalsLocked(usage.Model)
	chat.requests++
	chat.promptTokens += int64(usage.PromptTokens)
	chat.completionTokens += int64(usage.CompletionTokens)
	chat.cost += chatCost
	chat.latency += usage.Latency
	if embeddingCost > 0 {
		embedding := t.totalsLocked(usage.EmbeddingModel)
		embedding.requests++
		embedding.promptTokens += int64(usage.EmbeddingTokens)
		embedding.cost += embeddingCost
	}
	t.mu.Unlock()

	t.logger.Debug("recorded generation usage",
		"model", usage.Model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"estimated_cost", chatCost+embeddingCost,
		"latency_ms", usage.Latency.Milliseconds(),
		"suggestions", usage.SuggestionCount,
	)
}

func (t *UsageTracker) totalsLocked(model string) *modelTotals {
	totals, ok := t.byModel[model]
	if !ok {
		totals = &modelTotals{}
		t.byModel[model] = totals
	}
	return totals
}

// Snapshot returns per-model totals ordered by cost, highest first.
func (t *UsageTracker) Snapshot() []*ModelUsage {
	t.mu.Lock()
	defer t.mu.Unlock()

	usages := make([]*ModelUsage, 0, len(t.byModel))
	for model, totals := range t.byModel {
		usage := &ModelUsage{
			Model:            model,
			Requests:         totals.requests,
			PromptTokens:     totals.promptTokens,
			CompletionTokens: totals.completionTokens,
			EstimatedCost:    totals.cost,
		}
		if totals.requests > 0 {
			usage.AvgLatencyMs = float64(totals.latency.Milliseconds()) / float64(totals.requests)
		}
		usages = append(usages, usage)
	}
	sort.Slice(usages, func(i, j int) bool {
		if usages[i].EstimatedCost != usages[j].EstimatedCost {
			return usages[i].EstimatedCost > usages[j].EstimatedCost
		}
		return usages[i].Model < usages[j].Model
	})
	return usages
}

// TotalCost returns the estimated spend across all models.
func (t *UsageTracker) TotalCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0.0
	for _, totals := range t.byModel {
		total += totals.cost
	}
	return total
}
