package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyTraceID        contextKey = "trace_id"
	keyRunID          contextKey = "run_id"
	keyThoughtProcess contextKey = "thought_process"
	keyAttempt        contextKey = "attempt"
)

// WithTraceID adds trace ID to context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// TraceID extracts trace ID from context.
func TraceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyTraceID).(string)
	return v, ok && v != ""
}

// WithRunID adds run ID to context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, keyRunID, runID)
}

// RunID extracts run ID from context.
func RunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRunID).(string)
	return v, ok && v != ""
}

// WithThoughtProcess adds the active thought process name to context.
func WithThoughtProcess(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyThoughtProcess, name)
}

// ThoughtProcess extracts the active thought process name from context.
func ThoughtProcess(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyThoughtProcess).(string)
	return v, ok && v != ""
}

// WithAttempt adds the repair attempt index to context.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyAttempt, attempt)
}

// Attempt extracts the repair attempt index from context.
func Attempt(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(keyAttempt).(int)
	return v, ok
}
