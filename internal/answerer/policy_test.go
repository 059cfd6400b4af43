package answerer_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/internal/answerer"
	"helpdesk.app/triage/internal/model"
)

var _ = Describe("Policy", func() {
	var chat *mockChatClient

	BeforeEach(func() {
		chat = &mockChatClient{}
	})

	It("embeds a non-empty default policy corpus", func() {
		Expect(answerer.DefaultPolicyContext()).NotTo(BeEmpty())
	})

	It("assembles the prompt once and reuses it for every question", func() {
		policy := answerer.NewPolicy(chat, "Refunds within 30 days.", 1000)

		first := policy.SystemPrompt()

		_, err := policy.Answer(context.Background(), "what is the refund window", nil)
		Expect(err).NotTo(HaveOccurred())
		_, err = policy.Answer(context.Background(), "can I get my data deleted", nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(chat.requests).To(HaveLen(2))
		Expect(chat.requests[0].SystemPrompt).To(Equal(first))
		Expect(chat.requests[1].SystemPrompt).To(Equal(first))
		Expect(first).To(ContainSubstring("Refunds within 30 days."))
		Expect(first).To(ContainSubstring("Policy & Compliance assistant"))
	})

	It("falls back to the embedded corpus when given no context", func() {
		policy := answerer.NewPolicy(chat, "", 1000)
		Expect(policy.SystemPrompt()).To(ContainSubstring(answerer.DefaultPolicyContext()))
	})

	It("never touches the document store", func() {
		// NewPolicy takes no retriever at all; this is a compile-time
		// property. The answer path only calls the generator.
		policy := answerer.NewPolicy(chat, "corpus", 1000)

		_, err := policy.Answer(context.Background(), "question", []model.Turn{
			{Role: model.RoleUser, Content: "earlier"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(chat.requests).To(HaveLen(1))
		Expect(chat.requests[0].History).To(HaveLen(1))
	})

	It("surfaces generation errors", func() {
		chat.chatFn = func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, errors.New("backend down")
		}
		policy := answerer.NewPolicy(chat, "corpus", 1000)

		_, err := policy.Answer(context.Background(), "question", nil)
		Expect(err).To(HaveOccurred())
	})
})
