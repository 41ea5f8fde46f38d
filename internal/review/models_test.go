package review_test

import (
	"testing"

	"claimreview/internal/review"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  review.Status
		ok    bool
	}{
		{"pending", review.StatusPending, true},
		{" APPROVED ", review.StatusApproved, true},
		{"Rejected", review.StatusRejected, true},
		{"", "", false},
		{"settled", "settled", false},
	}
	for _, tc := range cases {
		got, ok := review.ParseStatus(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDecision(t *testing.T) {
	if got, ok := review.ParseDecision(" approve "); !ok || got != review.DecisionApprove {
		t.Fatalf("ParseDecision(approve) = %q, %v", got, ok)
	}
	if got, ok := review.ParseDecision("reject"); !ok || got != review.DecisionReject {
		t.Fatalf("ParseDecision(reject) = %q, %v", got, ok)
	}
	if _, ok := review.ParseDecision("escalate"); ok {
		t.Fatal("expected escalate to be rejected")
	}
}

func TestTerminalStatus(t *testing.T) {
	if review.DecisionApprove.TerminalStatus() != review.StatusApproved {
		t.Fatal("APPROVE should commit approved")
	}
	if review.DecisionReject.TerminalStatus() != review.StatusRejected {
		t.Fatal("REJECT should commit rejected")
	}
}

func TestIsDecided(t *testing.T) {
	record := review.Record{Status: review.StatusPending}
	if record.IsDecided() {
		t.Fatal("pending record should not be decided")
	}
	record.Status = review.StatusRejected
	if !record.IsDecided() {
		t.Fatal("rejected record should be decided")
	}
}
