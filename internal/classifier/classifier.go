package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/common/logger"
	"helpdesk.app/triage/internal/model"
)

const systemPrompt = `You are a routing agent. Classify the user's question into one of these categories:
- "billing": Questions about fees, pricing, invoices, payments, subscriptions, account tiers
- "technical": Questions about API, login issues, data feeds, troubleshooting, bugs, technical problems
- "policy": Questions about Terms of Service, Privacy Policy, compliance, legal matters, data privacy
- "general": General questions that don't fit the above categories

Respond with ONLY the category name (billing, technical, policy, or general).`

// Classifier assigns a routing category to a raw question.
type Classifier interface {
	Classify(ctx context.Context, question string) (model.Category, error)
}

// ClassificationError wraps a classifier backend failure. The orchestrator
// maps it to a visible answer failure instead of routing silently to a
// default.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classifying question: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

type classificationResult struct {
	Category string `json:"category" jsonschema_description:"One of: billing, technical, policy, general"`
}

type llmClassifier struct {
	llm       llm.Client
	maxTokens int
}

// New creates an LLM-backed classifier. Classification sees only the raw
// question: no conversation history, no retrieval. One attempt, no retry.
func New(client llm.Client, maxTokens int) Classifier {
	return &llmClassifier{llm: client, maxTokens: maxTokens}
}

func (c *llmClassifier) Classify(ctx context.Context, question string) (model.Category, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "triage.classifier",
	})

	var result classificationResult
	_, err := c.llm.Chat(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   question,
		SchemaName:   "question_category",
		Schema:       llm.GenerateSchema[classificationResult](),
		MaxTokens:    c.maxTokens,
		Temperature:  llm.Temp(0),
	}, &result)
	if err != nil {
		return "", &ClassificationError{Err: err}
	}

	category := model.ParseCategory(result.Category)

	slog.DebugContext(ctx, "question classified",
		"raw", result.Category,
		"category", category,
		"model", c.llm.Model())

	return category, nil
}
