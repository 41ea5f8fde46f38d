package review

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a review record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var allStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Decision is the reviewer's verdict as submitted on the decision form.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// MinNotesLength is the shortest review justification accepted at decision time.
const MinNotesLength = 20

// FraudIndicator is one rule hit recorded by the fraud scorer.
type FraudIndicator struct {
	Indicator   string `json:"indicator"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

// ClaimSnapshot is the immutable evidence captured when a claim is flagged.
// It is persisted as a single JSON document and never rewritten; field names
// match the on-disk layout consumed by existing history files.
type ClaimSnapshot struct {
	PolicyNumber      string           `json:"policy_number"`
	PolicyholderName  string           `json:"policyholder_name,omitempty"`
	ClaimAmount       float64          `json:"claim_amount"`
	ClaimDate         string           `json:"claim_date"`
	ReasonForClaim    string           `json:"reason_for_claim"`
	DriverRating      string           `json:"driver_rating,omitempty"`
	Age               int              `json:"age,omitempty"`
	PolicyType        string           `json:"policy_type,omitempty"`
	AccidentArea      string           `json:"accident_area,omitempty"`
	PoliceReportFiled string           `json:"police_report_filed,omitempty"`
	FraudProbability  float64          `json:"fraud_probability"`
	RiskLevel         string           `json:"risk_level"`
	FlagReason        string           `json:"flag_reason,omitempty"`
	FraudIndicators   []FraudIndicator `json:"fraud_indicators,omitempty"`
}

// Record represents one claim awaiting (or past) a human decision.
type Record struct {
	ReviewID      string
	Status        Status
	ClaimSnapshot ClaimSnapshot
	CreatedAt     time.Time
	Decision      Decision
	ReviewerName  string
	ReviewNotes   string
	DecidedAt     *time.Time
}

// Stats aggregates queue counts for reporting across pending and history.
type Stats struct {
	Total               int
	Pending             int
	Approved            int
	Rejected            int
	AvgFraudProbability float64
}

// DatabaseHealth captures diagnostic information about the review database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	PendingCount     int
	HistoryCount     int
	Error            string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ParseDecision converts a string into a known Decision.
func ParseDecision(value string) (Decision, bool) {
	normalized := Decision(strings.ToUpper(strings.TrimSpace(value)))
	switch normalized {
	case DecisionApprove, DecisionReject:
		return normalized, true
	default:
		return "", false
	}
}

// TerminalStatus maps a decision to the status it commits.
func (d Decision) TerminalStatus() Status {
	if d == DecisionReject {
		return StatusRejected
	}
	return StatusApproved
}

// IsDecided reports whether the record has reached a terminal status.
func (r Record) IsDecided() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
