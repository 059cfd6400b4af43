package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"helpdesk.app/triage/common/logger"
	"helpdesk.app/triage/internal/answerer"
	"helpdesk.app/triage/internal/classifier"
	"helpdesk.app/triage/internal/memory"
	"helpdesk.app/triage/internal/model"
)

// step is the orchestrator's position in one invocation. Every invocation
// walks start → routed → answered → end exactly once; there is no re-entry.
type step string

const (
	stepStart    step = "start"
	stepRouted   step = "routed"
	stepAnswered step = "answered"
	stepEnd      step = "end"
)

type Config struct {
	// DefaultThreadID scopes callers that don't supply a thread. They all
	// share one conversation.
	DefaultThreadID string
	// GenerateTimeout caps a single classify-or-answer call. Zero disables.
	GenerateTimeout time.Duration
}

// Orchestrator routes each question through the classifier to exactly one
// strategy answerer and maintains per-thread conversation history. It is the
// single error boundary: no failure below it escapes as anything other than
// readable answer text.
type Orchestrator struct {
	cfg        Config
	classifier classifier.Classifier
	answerers  map[model.Category]answerer.Answerer
	threads    *memory.ThreadStore
}

// New wires the orchestrator with all four strategy answerers up front.
// Every category in the closed enumeration must have an answerer.
func New(
	cfg Config,
	cls classifier.Classifier,
	answerers map[model.Category]answerer.Answerer,
	threads *memory.ThreadStore,
) (*Orchestrator, error) {
	for _, cat := range model.Categories {
		if answerers[cat] == nil {
			return nil, fmt.Errorf("missing answerer for category %s", cat)
		}
	}
	if cfg.DefaultThreadID == "" {
		cfg.DefaultThreadID = "default"
	}
	return &Orchestrator{
		cfg:        cfg,
		classifier: cls,
		answerers:  answerers,
		threads:    threads,
	}, nil
}

// Process answers one question on the given thread. It always returns
// non-empty, human-readable text; any classification, retrieval, or
// generation failure is converted into a user-visible answer here.
func (o *Orchestrator) Process(ctx context.Context, question, threadID string) string {
	if threadID == "" {
		threadID = o.cfg.DefaultThreadID
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ThreadID:  logger.Ptr(threadID),
		Component: "triage.orchestrator",
	})

	history := o.threads.History(threadID)

	slog.InfoContext(ctx, "processing question",
		"question", logger.Truncate(question, 200),
		"history_turns", len(history))

	var (
		current  = stepStart
		category model.Category
		answer   string
	)

	for current != stepEnd {
		switch current {
		case stepStart:
			cat, err := o.classify(ctx, question)
			if err != nil {
				slog.ErrorContext(ctx, "classification failed", "error", err)
				answer = fmt.Sprintf("I'm sorry, I couldn't determine how to route your question: %v", err)
				current = stepAnswered
				continue
			}
			category = cat
			ctx = logger.WithLogFields(ctx, logger.LogFields{Category: logger.Ptr(category.String())})
			current = stepRouted

		case stepRouted:
			answer = o.answer(ctx, category, question, history)
			current = stepAnswered

		case stepAnswered:
			o.threads.Append(threadID,
				model.Turn{Role: model.RoleUser, Content: question},
				model.Turn{Role: model.RoleAssistant, Content: answer},
			)
			current = stepEnd
		}
	}

	slog.InfoContext(ctx, "question answered",
		"answer_length", len(answer))

	return answer
}

func (o *Orchestrator) classify(ctx context.Context, question string) (model.Category, error) {
	ctx, cancel := o.callContext(ctx)
	defer cancel()
	return o.classifier.Classify(ctx, question)
}

// answer executes the routed-to answerer and maps failures and empty output
// to category-appropriate user-visible text.
func (o *Orchestrator) answer(ctx context.Context, category model.Category, question string, history []model.Turn) string {
	callCtx, cancel := o.callContext(ctx)
	defer cancel()

	text, err := o.answerers[category].Answer(callCtx, question, history)
	if err != nil {
		slog.ErrorContext(ctx, "answerer failed", "error", err)
		return failureAnswer(category, err)
	}
	if text == "" {
		slog.WarnContext(ctx, "answerer produced empty answer")
		return emptyAnswerFallback(category)
	}
	return text
}

func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.GenerateTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.cfg.GenerateTimeout)
}

func failureAnswer(category model.Category, err error) string {
	switch category {
	case model.CategoryBilling:
		return fmt.Sprintf("I encountered an error while processing your billing question: %v", err)
	case model.CategoryTechnical:
		return fmt.Sprintf("I encountered an error while processing your technical question: %v", err)
	case model.CategoryPolicy:
		return fmt.Sprintf("I encountered an error while processing your policy question: %v", err)
	default:
		return fmt.Sprintf("I'm sorry, I encountered an error: %v", err)
	}
}

func emptyAnswerFallback(category model.Category) string {
	switch category {
	case model.CategoryBilling:
		return "I couldn't find information about billing. Please ensure billing documents are uploaded."
	case model.CategoryTechnical:
		return "I couldn't find relevant technical information. Please ensure technical documents are uploaded."
	case model.CategoryPolicy:
		return "I couldn't generate a policy response. Please try rephrasing your question."
	default:
		return "I couldn't generate a response."
	}
}
