package answerer

import (
	"context"
	_ "embed"
	"fmt"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/internal/model"
)

//go:embed policy_context.md
var defaultPolicyContext string

// DefaultPolicyContext is the policy corpus compiled into the binary. A
// deployment can pass its own corpus to NewPolicy instead.
func DefaultPolicyContext() string {
	return defaultPolicyContext
}

// Policy answers from a fixed block of policy text and never touches the
// document store. The corpus is small, stable, and known in full at startup;
// retrieval would only risk omitting relevant clauses.
type Policy struct {
	systemPrompt string
	chat         llm.ChatClient
	maxTokens    int
}

// NewPolicy builds the answerer around an immutable static context. The
// generation prompt is assembled once here, so identical questions against
// identical history always see identical context.
func NewPolicy(chat llm.ChatClient, staticContext string, maxTokens int) *Policy {
	if staticContext == "" {
		staticContext = defaultPolicyContext
	}
	return &Policy{
		systemPrompt: fmt.Sprintf(
			"You are a Policy & Compliance assistant. Answer questions based ONLY on the following policy documents:\n\n%s\n\nAlways cite which policy document you're referencing.",
			staticContext,
		),
		chat:      chat,
		maxTokens: maxTokens,
	}
}

// SystemPrompt exposes the assembled prompt for inspection.
func (a *Policy) SystemPrompt() string {
	return a.systemPrompt
}

func (a *Policy) Answer(ctx context.Context, question string, history []model.Turn) (string, error) {
	resp, err := a.chat.Chat(ctx, llm.ChatRequest{
		SystemPrompt: a.systemPrompt,
		History:      historyMessages(history),
		UserPrompt:   question,
		MaxTokens:    a.maxTokens,
		Temperature:  llm.Temp(0),
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
