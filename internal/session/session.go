package session

import "sync"

// TabID identifies a top-level view.
type TabID string

const (
	TabProcess    TabID = "process"
	TabReview     TabID = "review"
	TabHistory    TabID = "history"
	TabStatistics TabID = "statistics"
)

// State is the per-session view model: which record is expanded and which
// tab is active. It is an in-memory cache over the store, never a source of
// truth — discarding it and re-reading the store reproduces an equivalent
// view.
type State struct {
	mu       sync.Mutex
	selected string
	tab      TabID
}

// New returns a session state opened on the review tab with nothing selected.
func New() *State {
	return &State{tab: TabReview}
}

// Select marks a review as expanded for display.
func (s *State) Select(reviewID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = reviewID
}

// Selected returns the currently expanded review id, if any.
func (s *State) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// ClearSelection drops the expanded review.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// SetTab activates a top-level tab.
func (s *State) SetTab(tab TabID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
}

// CurrentTab returns the active top-level tab.
func (s *State) CurrentTab() TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tab == "" {
		return TabReview
	}
	return s.tab
}

// Reconcile drops a selection that no longer exists in the pending set, so a
// stale session never points at a record the store has moved on from.
func (s *State) Reconcile(pendingIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return
	}
	for _, id := range pendingIDs {
		if id == s.selected {
			return
		}
	}
	s.selected = ""
}
