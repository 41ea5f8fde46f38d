package review

import "errors"

// Sentinel errors returned by the store and lifecycle controller. Callers
// classify failures with errors.Is; every one of these is recoverable at the
// presentation boundary by re-rendering current state.
var (
	// ErrStoreUnavailable indicates the backing database is missing or
	// unreadable. Callers should degrade to an empty pending list.
	ErrStoreUnavailable = errors.New("review store unavailable")

	// ErrDuplicateID indicates an append re-used an existing review_id.
	ErrDuplicateID = errors.New("duplicate review id")

	// ErrNotFound indicates the review_id is not in the pending set.
	ErrNotFound = errors.New("review not found")

	// ErrInvalidInput indicates the decision form failed validation.
	ErrInvalidInput = errors.New("invalid decision input")

	// ErrAlreadyDecided indicates the record left pending before this
	// decision committed (double submit or concurrent reviewer).
	ErrAlreadyDecided = errors.New("review already decided")
)
