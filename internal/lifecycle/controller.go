package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"claimreview/internal/audit"
	"claimreview/internal/config"
	"claimreview/internal/logging"
	"claimreview/internal/notifications"
	"claimreview/internal/review"
)

// Controller is the only component permitted to transition a review record.
// It validates the decision form, commits the move to history, and then
// fans out to the audit sink and notifier on a best-effort basis.
type Controller struct {
	store          *review.Store
	sink           audit.Sink
	notifier       notifications.Service
	logger         *slog.Logger
	minNotesLength int
}

// New constructs a controller. The audit sink and notifier may be nil; the
// store may not.
func New(cfg *config.Config, store *review.Store, sink audit.Sink, notifier notifications.Service, logger *slog.Logger) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("lifecycle controller requires a store")
	}
	minNotes := review.MinNotesLength
	if cfg != nil && cfg.Review.MinNotesLength > 0 {
		minNotes = cfg.Review.MinNotesLength
	}
	return &Controller{
		store:          store,
		sink:           sink,
		notifier:       notifier,
		logger:         logging.WithComponent(logger, "lifecycle"),
		minNotesLength: minNotes,
	}, nil
}

// Flag appends a freshly scored record to the pending queue and alerts
// reviewers. This is the only ingress into the review lifecycle.
func (c *Controller) Flag(ctx context.Context, record *review.Record) error {
	if err := c.store.Append(ctx, record); err != nil {
		return err
	}

	c.logger.Info("claim flagged for review",
		slog.String(logging.FieldReviewID, record.ReviewID),
		slog.String(logging.FieldPolicyNumber, record.ClaimSnapshot.PolicyNumber),
		slog.Float64("fraud_probability", record.ClaimSnapshot.FraudProbability),
		slog.String("risk_level", record.ClaimSnapshot.RiskLevel),
	)

	if c.notifier != nil {
		if err := c.notifier.NotifyReviewFlagged(ctx, record); err != nil {
			c.logger.Warn("review flagged notification failed", logging.Error(err))
		}
	}
	return nil
}

// SubmitDecision commits a human decision for a pending record.
//
// Validation failures return ErrInvalidInput without touching the store.
// A record that already left pending fails with ErrAlreadyDecided; an
// unknown id fails with ErrNotFound. On success the record has moved to
// history and the audit sink has been notified best-effort: an audit or
// notification failure is logged, never rolled back.
func (c *Controller) SubmitDecision(ctx context.Context, reviewID string, decisionValue, reviewerName, notes string) (*review.Record, error) {
	decision, ok := review.ParseDecision(decisionValue)
	if !ok {
		return nil, fmt.Errorf("%w: decision must be APPROVE or REJECT, got %q", review.ErrInvalidInput, decisionValue)
	}
	reviewerName = strings.TrimSpace(reviewerName)
	if reviewerName == "" {
		return nil, fmt.Errorf("%w: reviewer name is required", review.ErrInvalidInput)
	}
	if utf8.RuneCountInString(strings.TrimSpace(notes)) < c.minNotesLength {
		return nil, fmt.Errorf("%w: review notes must be at least %d characters", review.ErrInvalidInput, c.minNotesLength)
	}

	decided, err := c.store.MoveToHistory(ctx, reviewID, decision, reviewerName, notes, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	c.logger.Info("review decision committed",
		slog.String(logging.FieldReviewID, decided.ReviewID),
		slog.String(logging.FieldDecision, string(decided.Decision)),
		slog.String("reviewer", decided.ReviewerName),
	)

	if c.sink != nil {
		if err := c.sink.RecordDecision(ctx, audit.EventForRecord(decided)); err != nil {
			c.logger.Warn("audit sink notification failed",
				slog.String(logging.FieldReviewID, decided.ReviewID),
				logging.Error(err),
			)
		}
	}
	if c.notifier != nil {
		if err := c.notifier.NotifyDecision(ctx, decided); err != nil {
			c.logger.Warn("decision notification failed", logging.Error(err))
		}
	}

	return decided, nil
}
