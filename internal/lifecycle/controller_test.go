package lifecycle_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"claimreview/internal/audit"
	"claimreview/internal/config"
	"claimreview/internal/lifecycle"
	"claimreview/internal/logging"
	"claimreview/internal/notifications"
	"claimreview/internal/review"
	"claimreview/internal/testsupport"
)

func newController(t *testing.T, cfg *config.Config, store *review.Store) *lifecycle.Controller {
	t.Helper()
	controller, err := lifecycle.New(cfg, store, audit.NewSink(cfg), notifications.NewService(cfg), logging.NewNop())
	if err != nil {
		t.Fatalf("lifecycle.New failed: %v", err)
	}
	return controller
}

func TestSubmitDecisionValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	controller := newController(t, cfg, store)

	ctx := context.Background()
	record := testsupport.SampleRecord("validate")
	if err := controller.Flag(ctx, record); err != nil {
		t.Fatalf("Flag failed: %v", err)
	}

	cases := []struct {
		name     string
		decision string
		reviewer string
		notes    string
	}{
		{"unknown decision", "MAYBE", "Morgan", "These notes are definitely long enough to pass"},
		{"empty reviewer", "APPROVE", "   ", "These notes are definitely long enough to pass"},
		{"notes one short", "APPROVE", "Morgan", strings.Repeat("x", review.MinNotesLength-1)},
		{"whitespace padding ignored", "APPROVE", "Morgan", "  " + strings.Repeat("x", review.MinNotesLength-1) + "  "},
		{"multibyte notes one short", "APPROVE", "Morgan", strings.Repeat("審", review.MinNotesLength-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := controller.SubmitDecision(ctx, record.ReviewID, tc.decision, tc.reviewer, tc.notes)
			if !errors.Is(err, review.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	// Validation failures must leave the record pending.
	pending, err := store.GetPending(ctx, record.ReviewID)
	if err != nil || pending == nil {
		t.Fatalf("record should still be pending, got %#v (err %v)", pending, err)
	}

	// Exactly the minimum length passes.
	decided, err := controller.SubmitDecision(ctx, record.ReviewID, "APPROVE", "Morgan", strings.Repeat("x", review.MinNotesLength))
	if err != nil {
		t.Fatalf("SubmitDecision failed at minimum note length: %v", err)
	}
	if decided.Status != review.StatusApproved {
		t.Fatalf("expected approved, got %s", decided.Status)
	}

	// The minimum counts characters, not bytes.
	multibyte := testsupport.SampleRecord("validate-multibyte")
	if err := controller.Flag(ctx, multibyte); err != nil {
		t.Fatalf("Flag failed: %v", err)
	}
	if _, err := controller.SubmitDecision(ctx, multibyte.ReviewID, "APPROVE", "Morgan", strings.Repeat("審", review.MinNotesLength)); err != nil {
		t.Fatalf("SubmitDecision failed at minimum multibyte note length: %v", err)
	}
}

func TestSubmitDecisionTerminalTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	controller := newController(t, cfg, store)

	ctx := context.Background()
	record := testsupport.SampleRecord("terminal")
	if err := controller.Flag(ctx, record); err != nil {
		t.Fatalf("Flag failed: %v", err)
	}

	if _, err := controller.SubmitDecision(ctx, record.ReviewID, "reject", "Priya", "Damage description does not match the photos submitted"); err != nil {
		t.Fatalf("SubmitDecision failed: %v", err)
	}

	_, err := controller.SubmitDecision(ctx, record.ReviewID, "APPROVE", "Morgan", "Trying to reverse a decision that was already recorded")
	if !errors.Is(err, review.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}

	_, err = controller.SubmitDecision(ctx, "REV-unknown", "APPROVE", "Morgan", "Deciding a review id that never entered the queue")
	if !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitDecisionEmitsAuditEvent(t *testing.T) {
	var mu sync.Mutex
	var events []audit.DecisionEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event audit.DecisionEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode audit event: %v", err)
		}
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAuditWebhook(server.URL))
	store := testsupport.MustOpenStore(t, cfg)
	controller := newController(t, cfg, store)

	ctx := context.Background()
	record := testsupport.SampleRecord("audit")
	if err := controller.Flag(ctx, record); err != nil {
		t.Fatalf("Flag failed: %v", err)
	}
	if _, err := controller.SubmitDecision(ctx, record.ReviewID, "APPROVE", "Morgan", "Claim checks out against all supporting documents"); err != nil {
		t.Fatalf("SubmitDecision failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	event := events[0]
	if event.ReviewID != record.ReviewID || event.Decision != "APPROVE" || event.ReviewerName != "Morgan" {
		t.Fatalf("unexpected audit event: %#v", event)
	}
	if event.PolicyNumber != record.ClaimSnapshot.PolicyNumber {
		t.Fatalf("audit event missing policy number: %#v", event)
	}
	if event.DecidedAt.IsZero() {
		t.Fatal("audit event missing decided_at")
	}
}

func TestSubmitDecisionSurvivesAuditFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "audit trail offline", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAuditWebhook(server.URL))
	store := testsupport.MustOpenStore(t, cfg)
	controller := newController(t, cfg, store)

	ctx := context.Background()
	record := testsupport.SampleRecord("audit-down")
	if err := controller.Flag(ctx, record); err != nil {
		t.Fatalf("Flag failed: %v", err)
	}

	decided, err := controller.SubmitDecision(ctx, record.ReviewID, "REJECT", "Priya", "Repeated claims within days of the policy renewal")
	if err != nil {
		t.Fatalf("decision must commit even when the audit sink fails: %v", err)
	}
	if decided.Status != review.StatusRejected {
		t.Fatalf("expected rejected, got %s", decided.Status)
	}

	stored, err := store.GetHistory(ctx, record.ReviewID)
	if err != nil || stored == nil {
		t.Fatalf("decision missing from history after audit failure: %#v (err %v)", stored, err)
	}
}

func TestFlagNotifiesReviewers(t *testing.T) {
	var mu sync.Mutex
	var titles []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		titles = append(titles, r.Header.Get("Title"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	store := testsupport.MustOpenStore(t, cfg)
	controller := newController(t, cfg, store)

	if err := controller.Flag(context.Background(), testsupport.SampleRecord("notify")); err != nil {
		t.Fatalf("Flag failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(titles) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(titles))
	}
	if titles[0] != "Claimreview - Review Required" {
		t.Fatalf("unexpected notification title: %q", titles[0])
	}
}

func TestNewRequiresStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := lifecycle.New(cfg, nil, nil, nil, logging.NewNop()); err == nil {
		t.Fatal("expected error for nil store")
	}
}
