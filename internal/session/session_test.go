package session_test

import (
	"testing"

	"claimreview/internal/session"
)

func TestNewDefaultsToReviewTab(t *testing.T) {
	state := session.New()
	if state.CurrentTab() != session.TabReview {
		t.Fatalf("expected review tab, got %s", state.CurrentTab())
	}
	if _, ok := state.Selected(); ok {
		t.Fatal("expected no selection on a fresh session")
	}
}

func TestSelectAndClear(t *testing.T) {
	state := session.New()
	state.Select("REV-1")

	id, ok := state.Selected()
	if !ok || id != "REV-1" {
		t.Fatalf("expected REV-1 selected, got %q (%v)", id, ok)
	}

	state.ClearSelection()
	if _, ok := state.Selected(); ok {
		t.Fatal("expected selection cleared")
	}
}

func TestSetTab(t *testing.T) {
	state := session.New()
	state.SetTab(session.TabStatistics)
	if state.CurrentTab() != session.TabStatistics {
		t.Fatalf("expected statistics tab, got %s", state.CurrentTab())
	}
}

func TestReconcileDropsStaleSelection(t *testing.T) {
	state := session.New()
	state.Select("REV-2")

	state.Reconcile([]string{"REV-1", "REV-2", "REV-3"})
	if id, ok := state.Selected(); !ok || id != "REV-2" {
		t.Fatalf("selection should survive while pending, got %q (%v)", id, ok)
	}

	// REV-2 was decided and left the pending set.
	state.Reconcile([]string{"REV-1", "REV-3"})
	if _, ok := state.Selected(); ok {
		t.Fatal("expected stale selection dropped")
	}
}

func TestReconcileWithoutSelection(t *testing.T) {
	state := session.New()
	state.Reconcile(nil)
	if _, ok := state.Selected(); ok {
		t.Fatal("expected no selection")
	}
}
