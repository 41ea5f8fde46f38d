// Package review persists flagged claims in SQLite and defines the record
// types shared across the lifecycle.
//
// The Store maintains two durable collections keyed by review_id: the pending
// set awaiting a human decision and the history set of decided records kept
// forever for audit. A decision moves a record between them inside one
// transaction, so pending and history stay disjoint even when the process is
// interrupted mid-commit. Claim snapshots are stored as a single JSON column
// and are never rewritten after append.
//
// Treat this package as the single source of truth for queue contents;
// session state and CLI views are caches derived from it.
package review
