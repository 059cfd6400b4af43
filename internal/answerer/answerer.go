package answerer

import (
	"context"
	"fmt"
	"strings"

	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/model"
)

const answerSystemPrompt = `Use the following pieces of context to answer the question.
If you don't know the answer, just say that you don't know, don't try to make up an answer.`

// Answerer produces an answer for a question given the thread's prior turns.
// Implementations surface retrieval/generation errors unless they hold a
// fallback; the orchestrator is the boundary that converts errors into
// user-visible text.
type Answerer interface {
	Answer(ctx context.Context, question string, history []model.Turn) (string, error)
}

// retrieveAndGenerate is the shared retrieval-backed generation path: fetch
// top-k fragments from the collection, fold them into the system prompt, and
// generate with the conversation history.
func retrieveAndGenerate(
	ctx context.Context,
	retriever docstore.Retriever,
	chat llm.ChatClient,
	collection docstore.Collection,
	k int,
	question string,
	history []model.Turn,
	maxTokens int,
) (string, error) {
	fragments, err := retriever.Retrieve(ctx, collection, question, k)
	if err != nil {
		return "", err
	}

	resp, err := chat.Chat(ctx, llm.ChatRequest{
		SystemPrompt: fmt.Sprintf("%s\n\n%s", answerSystemPrompt, fragmentContext(fragments)),
		History:      historyMessages(history),
		UserPrompt:   question,
		MaxTokens:    maxTokens,
		Temperature:  llm.Temp(0),
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// fragmentContext renders retrieved fragments as a context block, labelling
// each with its source so the model can attribute answers.
func fragmentContext(fragments []model.Fragment) string {
	if len(fragments) == 0 {
		return "No relevant documents were found."
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, f := range fragments {
		b.WriteString("---\n")
		if f.Source != "" {
			fmt.Fprintf(&b, "[source: %s", f.Source)
			if f.Page > 0 {
				fmt.Fprintf(&b, ", page %d", f.Page)
			}
			b.WriteString("]\n")
		}
		b.WriteString(f.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func historyMessages(history []model.Turn) []llm.Message {
	if len(history) == 0 {
		return nil
	}
	messages := make([]llm.Message, len(history))
	for i, t := range history {
		messages[i] = llm.Message{Role: t.Role, Content: t.Content}
	}
	return messages
}
