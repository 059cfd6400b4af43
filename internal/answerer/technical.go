package answerer

import (
	"context"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/model"
)

const technicalTopK = 5

// Technical always retrieves fresh fragments from the technical collection
// and never caches. Technical and API state changes frequently, so freshness
// wins over speed here.
type Technical struct {
	retriever docstore.Retriever
	chat      llm.ChatClient
	maxTokens int
}

func NewTechnical(retriever docstore.Retriever, chat llm.ChatClient, maxTokens int) *Technical {
	return &Technical{retriever: retriever, chat: chat, maxTokens: maxTokens}
}

func (a *Technical) Answer(ctx context.Context, question string, history []model.Turn) (string, error) {
	return retrieveAndGenerate(ctx, a.retriever, a.chat, docstore.CollectionTechnical, technicalTopK, question, history, a.maxTokens)
}
