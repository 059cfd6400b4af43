package classifier_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/internal/classifier"
	"helpdesk.app/triage/internal/model"
)

type mockStructuredClient struct {
	chatFn func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)

	requests []llm.Request
}

func (m *mockStructuredClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return &llm.Response{}, nil
}

func (m *mockStructuredClient) Model() string {
	return "mock-model"
}

// answered fills the structured result the way the real client does after a
// completion.
func answered(category string) func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		payload, _ := json.Marshal(map[string]string{"category": category})
		if err := json.Unmarshal(payload, result); err != nil {
			return nil, err
		}
		return &llm.Response{}, nil
	}
}

var _ = Describe("Classifier", func() {
	var client *mockStructuredClient

	BeforeEach(func() {
		client = &mockStructuredClient{}
	})

	It("maps model output to the routing category", func() {
		client.chatFn = answered("billing")
		c := classifier.New(client, 50)

		category, err := c.Classify(context.Background(), "why was I charged twice")
		Expect(err).NotTo(HaveOccurred())
		Expect(category).To(Equal(model.CategoryBilling))
	})

	It("normalizes noisy model output", func() {
		client.chatFn = answered(" TECHNICAL ")
		c := classifier.New(client, 50)

		category, err := c.Classify(context.Background(), "api is down")
		Expect(err).NotTo(HaveOccurred())
		Expect(category).To(Equal(model.CategoryTechnical))
	})

	It("coerces out-of-enumeration output to general", func() {
		client.chatFn = answered("sales")
		c := classifier.New(client, 50)

		category, err := c.Classify(context.Background(), "do you offer demos")
		Expect(err).NotTo(HaveOccurred())
		Expect(category).To(Equal(model.CategoryGeneral))
	})

	It("sends only the raw question, deterministically", func() {
		client.chatFn = answered("general")
		c := classifier.New(client, 50)

		_, err := c.Classify(context.Background(), "hello there")
		Expect(err).NotTo(HaveOccurred())

		Expect(client.requests).To(HaveLen(1))
		req := client.requests[0]
		Expect(req.UserPrompt).To(Equal("hello there"))
		Expect(req.Temperature).To(HaveValue(BeZero()))
		Expect(req.SchemaName).To(Equal("question_category"))
		Expect(req.MaxTokens).To(Equal(50))
	})

	It("wraps backend failures in a classification error", func() {
		client.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, errors.New("quota exceeded")
		}
		c := classifier.New(client, 50)

		_, err := c.Classify(context.Background(), "anything")
		Expect(err).To(HaveOccurred())

		var clsErr *classifier.ClassificationError
		Expect(errors.As(err, &clsErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("quota exceeded"))
	})
})
