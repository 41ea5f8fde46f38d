package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"claimreview/internal/audit"
	"claimreview/internal/review"
	"claimreview/internal/testsupport"
)

func TestWebhookSinkPostsEvent(t *testing.T) {
	var gotContentType, gotUserAgent string
	var decoded audit.DecisionEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&decoded); err != nil {
			t.Errorf("decode event: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAuditWebhook(server.URL))
	sink := audit.NewSink(cfg)

	event := audit.DecisionEvent{
		ReviewID:         "REV-audit-1",
		Decision:         "REJECT",
		ReviewerName:     "Priya",
		DecidedAt:        time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC),
		PolicyNumber:     "POL-77",
		FraudProbability: 0.8,
		RiskLevel:        "HIGH",
		ReviewNotes:      "Inconsistent statements across the claim interviews",
	}
	if err := sink.RecordDecision(context.Background(), event); err != nil {
		t.Fatalf("RecordDecision failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if gotUserAgent == "" {
		t.Fatal("expected a user agent")
	}
	if decoded != event {
		t.Fatalf("event did not round-trip: %#v", decoded)
	}
}

func TestWebhookSinkReportsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "trail rejected the event", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAuditWebhook(server.URL))
	sink := audit.NewSink(cfg)

	if err := sink.RecordDecision(context.Background(), audit.DecisionEvent{ReviewID: "REV-x"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNewSinkWithoutWebhookIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sink := audit.NewSink(cfg)
	if err := sink.RecordDecision(context.Background(), audit.DecisionEvent{ReviewID: "REV-x"}); err != nil {
		t.Fatalf("noop sink returned error: %v", err)
	}
}

func TestEventForRecord(t *testing.T) {
	record := testsupport.SampleRecord("event")
	decidedAt := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	record.Status = review.StatusApproved
	record.Decision = review.DecisionApprove
	record.ReviewerName = "Morgan"
	record.ReviewNotes = "Everything in the file supports paying this claim"
	record.DecidedAt = &decidedAt

	event := audit.EventForRecord(record)
	if event.ReviewID != record.ReviewID || event.Decision != "APPROVE" || event.ReviewerName != "Morgan" {
		t.Fatalf("unexpected event: %#v", event)
	}
	if event.PolicyNumber != record.ClaimSnapshot.PolicyNumber {
		t.Fatalf("policy number not carried: %#v", event)
	}
	if event.FraudProbability != record.ClaimSnapshot.FraudProbability || event.RiskLevel != record.ClaimSnapshot.RiskLevel {
		t.Fatalf("assessment fields not carried: %#v", event)
	}
	if !event.DecidedAt.Equal(decidedAt) {
		t.Fatalf("decided_at not carried: %v", event.DecidedAt)
	}
}
