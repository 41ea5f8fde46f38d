package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claimreview/internal/config"
	"claimreview/internal/review"
)

const userAgent = "claimreview/0.1.0"

// DecisionEvent is the compliance-trail entry emitted once per committed
// decision. Field names are part of the trail format consumed downstream.
type DecisionEvent struct {
	ReviewID         string    `json:"review_id"`
	Decision         string    `json:"decision"`
	ReviewerName     string    `json:"reviewer_name"`
	DecidedAt        time.Time `json:"decided_at"`
	PolicyNumber     string    `json:"policy_number"`
	FraudProbability float64   `json:"fraud_probability"`
	RiskLevel        string    `json:"risk_level"`
	ReviewNotes      string    `json:"review_notes"`
}

// Sink receives decision events. Implementations are write-only and
// best-effort: a sink failure never reverses a committed decision.
type Sink interface {
	RecordDecision(ctx context.Context, event DecisionEvent) error
}

// NewSink builds an audit sink backed by the configured webhook. When no
// webhook is configured, a noop implementation is returned.
func NewSink(cfg *config.Config) Sink {
	endpoint := strings.TrimSpace(cfg.Audit.WebhookURL)
	if endpoint == "" {
		return noopSink{}
	}

	timeout := time.Duration(cfg.Audit.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// EventForRecord builds the decision event for a decided record.
func EventForRecord(record *review.Record) DecisionEvent {
	event := DecisionEvent{
		ReviewID:         record.ReviewID,
		Decision:         string(record.Decision),
		ReviewerName:     record.ReviewerName,
		PolicyNumber:     record.ClaimSnapshot.PolicyNumber,
		FraudProbability: record.ClaimSnapshot.FraudProbability,
		RiskLevel:        record.ClaimSnapshot.RiskLevel,
		ReviewNotes:      record.ReviewNotes,
	}
	if record.DecidedAt != nil {
		event.DecidedAt = *record.DecidedAt
	}
	return event
}

type webhookSink struct {
	endpoint string
	client   *http.Client
}

func (s *webhookSink) RecordDecision(ctx context.Context, event DecisionEvent) error {
	if s == nil || s.client == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build audit request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send audit event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("audit webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopSink struct{}

func (noopSink) RecordDecision(context.Context, DecisionEvent) error { return nil }
