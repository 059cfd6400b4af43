package answerer_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/internal/answerer"
	"helpdesk.app/triage/internal/cache"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/model"
)

var _ = Describe("IsPricingRelated", func() {
	It("matches each pricing keyword as a substring, case-insensitively", func() {
		Expect(answerer.IsPricingRelated("What FEES do you charge?")).To(BeTrue())
		Expect(answerer.IsPricingRelated("how is the price set")).To(BeTrue())
		Expect(answerer.IsPricingRelated("Total cost?")).To(BeTrue())
		Expect(answerer.IsPricingRelated("billing question")).To(BeTrue())
		Expect(answerer.IsPricingRelated("payment failed")).To(BeTrue())
		Expect(answerer.IsPricingRelated("cancel my subscription")).To(BeTrue())
	})

	It("matches keywords embedded in larger words", func() {
		Expect(answerer.IsPricingRelated("is this priceless?")).To(BeTrue())
	})

	It("rejects unrelated questions", func() {
		Expect(answerer.IsPricingRelated("how do I reset my password")).To(BeFalse())
		Expect(answerer.IsPricingRelated("")).To(BeFalse())
	})
})

var _ = Describe("Billing", func() {
	var (
		retriever   *mockRetriever
		chat        *mockChatClient
		policyCache *cache.PolicyCache
		billing     *answerer.Billing
	)

	BeforeEach(func() {
		retriever = &mockRetriever{}
		chat = &mockChatClient{}
		policyCache = cache.NewPolicyCache()
		billing = answerer.NewBilling(retriever, chat, policyCache, 1000)
	})

	It("retrieves from the billing collection", func() {
		var gotCollection docstore.Collection
		var gotK int
		retriever.retrieveFn = func(_ context.Context, collection docstore.Collection, _ string, k int) ([]model.Fragment, error) {
			gotCollection = collection
			gotK = k
			return nil, nil
		}

		_, err := billing.Answer(context.Background(), "how do refunds work", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotCollection).To(Equal(docstore.CollectionBilling))
		Expect(gotK).To(Equal(4))
	})

	It("caches the answer to a pricing question", func() {
		chat.chatFn = func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: "Plans start at $10/month."}, nil
		}

		answer, err := billing.Answer(context.Background(), "what is the price of the basic plan", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Plans start at $10/month."))

		cached, ok := policyCache.Get(cache.PricingContextKey)
		Expect(ok).To(BeTrue())
		Expect(cached).To(Equal("Plans start at $10/month."))
	})

	It("does not cache answers to non-pricing questions", func() {
		_, err := billing.Answer(context.Background(), "where do I download my invoice history export", nil)
		Expect(err).NotTo(HaveOccurred())

		_, ok := policyCache.Get(cache.PricingContextKey)
		Expect(ok).To(BeFalse())
	})

	It("serves the cached text verbatim when fresh generation fails", func() {
		policyCache.Put(cache.PricingContextKey, "Cached: plans start at $10/month.")
		chat.chatFn = func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, &llm.GenerationError{Provider: "openai", Err: errors.New("backend down")}
		}

		answer, err := billing.Answer(context.Background(), "what does the premium subscription cost", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Cached: plans start at $10/month."))
	})

	It("serves the cached text when retrieval fails on a warm cache", func() {
		policyCache.Put(cache.PricingContextKey, "Cached pricing.")
		retriever.retrieveFn = func(context.Context, docstore.Collection, string, int) ([]model.Fragment, error) {
			return nil, errors.New("search unreachable")
		}

		answer, err := billing.Answer(context.Background(), "billing cost?", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Cached pricing."))
	})

	It("discloses cached context when a differing fresh answer succeeds", func() {
		policyCache.Put(cache.PricingContextKey, "Old pricing answer.")
		chat.chatFn = func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: "New pricing answer."}, nil
		}

		answer, err := billing.Answer(context.Background(), "what are your fees", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(HavePrefix("New pricing answer."))
		Expect(answer).To(HaveSuffix("[Note: This includes cached policy information for quick reference]"))
	})

	It("returns the cached text without disclosure when the fresh answer matches", func() {
		policyCache.Put(cache.PricingContextKey, "Same answer.")
		chat.chatFn = func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: "Same answer."}, nil
		}

		answer, err := billing.Answer(context.Background(), "what are your fees", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Same answer."))
	})

	It("surfaces errors on a cold cache", func() {
		chat.chatFn = func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, errors.New("backend down")
		}

		_, err := billing.Answer(context.Background(), "what are your fees", nil)
		Expect(err).To(HaveOccurred())
	})
})
