package answerer

import (
	"context"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/model"
)

const generalTopK = 4

// General is the catch-all retrieval answerer. It answers from the general
// document collection when classification yields no specialized category.
type General struct {
	retriever docstore.Retriever
	chat      llm.ChatClient
	maxTokens int
}

func NewGeneral(retriever docstore.Retriever, chat llm.ChatClient, maxTokens int) *General {
	return &General{retriever: retriever, chat: chat, maxTokens: maxTokens}
}

func (a *General) Answer(ctx context.Context, question string, history []model.Turn) (string, error) {
	return retrieveAndGenerate(ctx, a.retriever, a.chat, docstore.CollectionGeneral, generalTopK, question, history, a.maxTokens)
}
