package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs
// within a context. Fields flow through context enrichment so business
// context (user_id, block, entry_date) shows up in every log statement
// without threading it through call sites.
type LogFields struct {
	UserID    *int64  // Pulse user ID
	Block     *string // Block being scored ("body", "work", "nutrition")
	EntryDate *string // Calendar day of the entry being processed
	MessageID *string // Redis stream message ID
	Component string  // Component name (e.g., "pulse.snapshot.builder")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
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

func mergeFields(existing, updated LogFields) LogFields {
	result := existing

	if updated.UserID != nil {
		result.UserID = updated.UserID
	}
	if updated.Block != nil {
		result.Block = updated.Block
	}
	if updated.EntryDate != nil {
		result.EntryDate = updated.EntryDate
	}
	if updated.MessageID != nil {
		result.MessageID = updated.MessageID
	}
	if updated.Component != "" {
		result.Component = updated.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging potentially long strings like notes or
// model responses.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
