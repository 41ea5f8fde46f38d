package logging

import (
	"io"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldReviewID is the standardized structured logging key for review identifiers.
	FieldReviewID = "review_id"
	// FieldPolicyNumber is the standardized structured logging key for claim policy numbers.
	FieldPolicyNumber = "policy_number"
	// FieldDecision is the standardized structured logging key for reviewer decisions.
	FieldDecision = "decision"
)

// WithComponent returns a logger tagged with the given component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// Error wraps an error for structured logging, tolerating nil. The message is
// captured as a string so both handlers render it the same way.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
}
