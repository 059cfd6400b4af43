package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment so business context
// (thread_id, category, etc.) shows up in every log statement without being
// threaded through call sites.
type LogFields struct {
	ThreadID   *string // conversation thread identifier
	Category   *string // routing category for the current question
	DocumentID *int64  // document being ingested
	MessageID  *string // redis stream message ID
	Collection *string // document collection being queried or indexed
	Component  string  // component name (e.g., "triage.orchestrator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, update LogFields) LogFields {
	result := existing

	if update.ThreadID != nil {
		result.ThreadID = update.ThreadID
	}
	if update.Category != nil {
		result.Category = update.Category
	}
	if update.DocumentID != nil {
		result.DocumentID = update.DocumentID
	}
	if update.MessageID != nil {
		result.MessageID = update.MessageID
	}
	if update.Collection != nil {
		result.Collection = update.Collection
	}
	if update.Component != "" {
		result.Component = update.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value, for setting LogFields inline.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like questions or answers.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
