package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"claimreview/internal/config"
)

// Store manages review persistence backed by SQLite. Pending and history
// records live in separate tables; a record moves between them in a single
// transaction so an interrupted commit never leaves it in both or neither.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the review database and acquires the
// single-writer lock for the data directory. A database that cannot be
// opened or read, a corrupt file included, surfaces ErrStoreUnavailable
// so callers can degrade to an empty queue.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "reviews.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire review lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another claimreview process holds the review database")
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "reviews.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrStoreUnavailable, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("%w: apply pragma %q: %w", ErrStoreUnavailable, pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return store, nil
}

// Close closes the database connection and releases the writer lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return closeErr
}

// Path returns the review database location.
func (s *Store) Path() string {
	return s.path
}

// Append adds a new pending record produced by the fraud-flagging ingress.
// The claim snapshot must be complete; a record is never enqueued ahead of
// its evidence.
func (s *Store) Append(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidInput)
	}
	if strings.TrimSpace(record.ReviewID) == "" {
		return fmt.Errorf("%w: review id is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(record.ClaimSnapshot.PolicyNumber) == "" {
		return fmt.Errorf("%w: claim snapshot missing policy number", ErrInvalidInput)
	}
	if record.ClaimSnapshot.RiskLevel == "" {
		return fmt.Errorf("%w: claim snapshot missing risk level", ErrInvalidInput)
	}

	snapshot, err := json.Marshal(record.ClaimSnapshot)
	if err != nil {
		return fmt.Errorf("marshal claim snapshot: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT (SELECT COUNT(1) FROM pending_reviews WHERE review_id = ?)
			      + (SELECT COUNT(1) FROM review_history WHERE review_id = ?)`,
			record.ReviewID, record.ReviewID,
		).Scan(&count); err != nil {
			return fmt.Errorf("check existing id: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ReviewID)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pending_reviews (review_id, status, claim_snapshot, created_at)
			 VALUES (?, ?, ?, ?)`,
			record.ReviewID,
			StatusPending,
			string(snapshot),
			createdAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert pending review: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	record.Status = StatusPending
	record.CreatedAt = createdAt
	return nil
}

// LoadPending returns all pending records in insertion order (oldest first)
// so reviewers work a FIFO queue. An unreadable store surfaces
// ErrStoreUnavailable; callers degrade to an empty queue.
func (s *Store) LoadPending(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM pending_reviews ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: load pending: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: load pending: %w", ErrStoreUnavailable, err)
	}
	return records, nil
}

// History returns decided records ordered by decision time (oldest first).
func (s *Store) History(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM review_history ORDER BY decided_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %w", ErrStoreUnavailable, err)
	}
	return records, nil
}

// GetPending fetches a pending record by review id. Missing records return
// (nil, nil).
func (s *Store) GetPending(ctx context.Context, reviewID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM pending_reviews WHERE review_id = ?`, reviewID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending review: %w", err)
	}
	return record, nil
}

// GetHistory fetches a decided record by review id. Missing records return
// (nil, nil).
func (s *Store) GetHistory(ctx context.Context, reviewID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM review_history WHERE review_id = ?`, reviewID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history review: %w", err)
	}
	return record, nil
}

// MoveToHistory commits a decision: it removes the record from the pending
// set and inserts the decided record into history in one transaction. The
// snapshot and creation time are carried over from the pending row verbatim,
// never from the caller, so the evidence stays write-once. A record that has
// already left pending fails with ErrAlreadyDecided.
func (s *Store) MoveToHistory(ctx context.Context, reviewID string, decision Decision, reviewerName, notes string, decidedAt time.Time) (*Record, error) {
	var decided *Record

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+recordColumns+` FROM pending_reviews WHERE review_id = ?`, reviewID)
		pending, err := scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			var inHistory int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(1) FROM review_history WHERE review_id = ?`, reviewID,
			).Scan(&inHistory); err != nil {
				return fmt.Errorf("check history: %w", err)
			}
			if inHistory > 0 {
				return fmt.Errorf("%w: %s", ErrAlreadyDecided, reviewID)
			}
			return fmt.Errorf("%w: %s", ErrNotFound, reviewID)
		}
		if err != nil {
			return fmt.Errorf("read pending review: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM pending_reviews WHERE review_id = ? AND status = ?`,
			reviewID, StatusPending)
		if err != nil {
			return fmt.Errorf("remove pending review: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyDecided, reviewID)
		}

		snapshot, err := json.Marshal(pending.ClaimSnapshot)
		if err != nil {
			return fmt.Errorf("marshal claim snapshot: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_history
			 (review_id, status, claim_snapshot, created_at, decision, reviewer_name, review_notes, decided_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			reviewID,
			decision.TerminalStatus(),
			string(snapshot),
			pending.CreatedAt.Format(time.RFC3339Nano),
			decision,
			reviewerName,
			notes,
			decidedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert history review: %w", err)
		}

		at := decidedAt.UTC()
		decided = &Record{
			ReviewID:      reviewID,
			Status:        decision.TerminalStatus(),
			ClaimSnapshot: pending.ClaimSnapshot,
			CreatedAt:     pending.CreatedAt,
			Decision:      decision,
			ReviewerName:  reviewerName,
			ReviewNotes:   notes,
			DecidedAt:     &at,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// ClearPending removes all pending records. History is never cleared; decided
// records are retained for audit.
func (s *Store) ClearPending(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM pending_reviews`)
	if err != nil {
		return 0, fmt.Errorf("clear pending reviews: %w", err)
	}
	return res.RowsAffected()
}

// Stats aggregates counts and the average fraud probability across pending
// and decided records.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	pending, err := s.LoadPending(ctx)
	if err != nil {
		return Stats{}, err
	}
	history, err := s.History(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Pending: len(pending)}
	var probabilitySum float64
	for _, record := range pending {
		probabilitySum += record.ClaimSnapshot.FraudProbability
	}
	for _, record := range history {
		probabilitySum += record.ClaimSnapshot.FraudProbability
		switch record.Status {
		case StatusApproved:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		}
	}
	stats.Total = len(pending) + len(history)
	if stats.Total > 0 {
		stats.AvgFraudProbability = probabilitySum / float64(stats.Total)
	}
	return stats, nil
}

// CheckHealth returns diagnostic information about the review database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("review database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat review database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("review database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("review database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping review database: %w", err)
	}
	health.DatabaseReadable = true

	expected := []string{"pending_reviews", "review_history"}
	for _, name := range expected {
		var found string
		row := s.db.QueryRowContext(connCtx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name)
		if err := row.Scan(&found); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				health.MissingTables = append(health.MissingTables, name)
				continue
			}
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
		health.TablesPresent = append(health.TablesPresent, found)
	}

	if len(health.MissingTables) == 0 {
		row := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM pending_reviews")
		if err := row.Scan(&health.PendingCount); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count pending reviews: %w", err)
		}
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM review_history")
		if err := row.Scan(&health.HistoryCount); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count review history: %w", err)
		}
	}

	row := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

const recordColumns = "review_id, status, claim_snapshot, created_at, decision, reviewer_name, review_notes, decided_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		reviewID     string
		statusStr    string
		snapshotJSON string
		createdRaw   string
		decision     sql.NullString
		reviewerName sql.NullString
		reviewNotes  sql.NullString
		decidedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&reviewID,
		&statusStr,
		&snapshotJSON,
		&createdRaw,
		&decision,
		&reviewerName,
		&reviewNotes,
		&decidedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ReviewID:     reviewID,
		Status:       Status(statusStr),
		Decision:     Decision(decision.String),
		ReviewerName: reviewerName.String,
		ReviewNotes:  reviewNotes.String,
	}

	if err := json.Unmarshal([]byte(snapshotJSON), &record.ClaimSnapshot); err != nil {
		return nil, fmt.Errorf("unmarshal claim snapshot: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	if decidedRaw.Valid {
		if decided, err := parseTimeString(decidedRaw.String); err == nil {
			record.DecidedAt = &decided
		}
	}
	return record, nil
}

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
