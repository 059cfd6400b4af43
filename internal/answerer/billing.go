package answerer

import (
	"context"
	"log/slog"
	"strings"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/common/logger"
	"helpdesk.app/triage/internal/cache"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/model"
)

const (
	billingTopK = 4

	// Appended when a fresh answer is served alongside a warm cache entry.
	cacheDisclosure = "\n\n[Note: This includes cached policy information for quick reference]"
)

var pricingKeywords = []string{"fee", "price", "cost", "billing", "payment", "subscription"}

// IsPricingRelated reports whether a question matches the fixed pricing
// keyword set (case-insensitive substring match). This check is local to the
// billing answerer and independent of the LLM classifier.
func IsPricingRelated(question string) bool {
	lower := strings.ToLower(question)
	for _, kw := range pricingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Billing combines document retrieval with a single-slot cache of the most
// recent pricing answer. On a warm cache it still attempts a fresh
// retrieval-backed answer and discloses when cached material is involved;
// if the fresh attempt fails, the cached text is returned verbatim. The
// cache fallback is a pure in-memory lookup and never depends on the
// document store or the generator being reachable.
type Billing struct {
	retriever docstore.Retriever
	chat      llm.ChatClient
	cache     *cache.PolicyCache
	maxTokens int
}

func NewBilling(retriever docstore.Retriever, chat llm.ChatClient, policyCache *cache.PolicyCache, maxTokens int) *Billing {
	return &Billing{retriever: retriever, chat: chat, cache: policyCache, maxTokens: maxTokens}
}

func (a *Billing) Answer(ctx context.Context, question string, history []model.Turn) (string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "triage.answerer.billing",
	})

	pricing := IsPricingRelated(question)

	if pricing {
		if cached, ok := a.cache.Get(cache.PricingContextKey); ok {
			// Best-effort refresh. Doubles generation cost on every
			// warm-cache pricing query, but keeps cached policy text from
			// going stale silently.
			fresh, err := retrieveAndGenerate(ctx, a.retriever, a.chat, docstore.CollectionBilling, billingTopK, question, history, a.maxTokens)
			if err != nil || fresh == "" {
				if err != nil {
					slog.WarnContext(ctx, "fresh billing answer failed, serving cached pricing context", "error", err)
				}
				return cached, nil
			}
			if fresh != cached {
				return fresh + cacheDisclosure, nil
			}
			return cached, nil
		}
	}

	answer, err := retrieveAndGenerate(ctx, a.retriever, a.chat, docstore.CollectionBilling, billingTopK, question, history, a.maxTokens)
	if err != nil {
		return "", err
	}

	if pricing && answer != "" {
		a.cache.Put(cache.PricingContextKey, answer)
		slog.DebugContext(ctx, "pricing answer cached")
	}

	return answer, nil
}
