package fraud

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"claimreview/internal/config"
	"claimreview/internal/review"
)

// ClaimInput is the claim plus policy context supplied by the upstream
// document pipeline. Field names mirror the extraction layout so existing
// claim JSON loads unchanged.
type ClaimInput struct {
	PolicyNumber      string  `json:"policy_number"`
	PolicyholderName  string  `json:"policyholder_name"`
	ClaimAmount       float64 `json:"claim_amount"`
	ClaimDate         string  `json:"claim_date"`
	ReasonForClaim    string  `json:"reason_for_claim"`
	DriverRating      string  `json:"driver_rating"`
	Age               int     `json:"age"`
	PolicyType        string  `json:"policy_type"`
	AccidentArea      string  `json:"accident_area"`
	PoliceReportFiled string  `json:"police_report_filed"`
	PolicyLimit       float64 `json:"policy_limit"`
	PastClaimsAmount  float64 `json:"past_claims_amount"`
	ClaimHistoryCount int     `json:"claim_history_count"`
	PolicyExpiryDate  string  `json:"policy_expiry_date"`
}

// Assessment is the scorer's verdict for one claim.
type Assessment struct {
	RiskScore      int
	Probability    float64
	RiskLevel      string
	Indicators     []review.FraudIndicator
	Recommendation string
	RequiresReview bool
}

// Risk levels in descending order of severity.
const (
	RiskHigh    = "HIGH"
	RiskMedium  = "MEDIUM"
	RiskLow     = "LOW"
	RiskMinimal = "MINIMAL"
)

var claimDateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
}

// Score runs the rule-based fraud indicators against a claim and reports
// whether it crosses the configured review threshold.
func Score(input ClaimInput, cfg config.Fraud) Assessment {
	var indicators []review.FraudIndicator
	score := 0

	// Claim amount close to the policy limit suggests suspicious timing.
	if input.PolicyLimit > 0 {
		utilization := input.ClaimAmount / input.PolicyLimit * 100
		if utilization > 95 {
			indicators = append(indicators, review.FraudIndicator{
				Indicator:   "High Limit Utilization",
				Severity:    RiskHigh,
				Description: fmt.Sprintf("Claim amount (%.2f) is %.1f%% of policy limit", input.ClaimAmount, utilization),
				Weight:      25,
			})
			score += 25
		} else if utilization > 85 {
			indicators = append(indicators, review.FraudIndicator{
				Indicator:   "Suspicious Limit Utilization",
				Severity:    RiskMedium,
				Description: fmt.Sprintf("Claim amount is %.1f%% of limit - close to maximum", utilization),
				Weight:      15,
			})
			score += 15
		}
	}

	if input.ClaimHistoryCount >= cfg.FrequentClaimCount {
		indicators = append(indicators, review.FraudIndicator{
			Indicator:   "Frequent Claims",
			Severity:    RiskMedium,
			Description: fmt.Sprintf("%d previous claims - high claim frequency", input.ClaimHistoryCount),
			Weight:      20,
		})
		score += 20
	}

	// Round amounts are a weak fabrication signal.
	if input.ClaimAmount >= 10000 && math.Mod(input.ClaimAmount, 1000) == 0 {
		indicators = append(indicators, review.FraudIndicator{
			Indicator:   "Round Number Claim",
			Severity:    RiskLow,
			Description: fmt.Sprintf("Claim amount is exactly %.0f (suspiciously round)", input.ClaimAmount),
			Weight:      10,
		})
		score += 10
	}

	if input.ClaimAmount > cfg.HighValueAmount {
		indicators = append(indicators, review.FraudIndicator{
			Indicator:   "High Value Claim",
			Severity:    RiskMedium,
			Description: fmt.Sprintf("Large claim amount: %.2f", input.ClaimAmount),
			Weight:      15,
		})
		score += 15
	}

	if days, ok := daysBeforeExpiry(input.ClaimDate, input.PolicyExpiryDate); ok && days >= 0 && days <= 30 {
		indicators = append(indicators, review.FraudIndicator{
			Indicator:   "Claim Near Expiry",
			Severity:    RiskMedium,
			Description: fmt.Sprintf("Claim filed %d days before policy expiration", days),
			Weight:      20,
		})
		score += 20
	}

	if score > 100 {
		score = 100
	}

	level, recommendation := classify(score)
	probability := float64(score) / 100

	return Assessment{
		RiskScore:      score,
		Probability:    probability,
		RiskLevel:      level,
		Indicators:     indicators,
		Recommendation: recommendation,
		RequiresReview: probability >= cfg.ReviewThreshold,
	}
}

// NewRecord builds the pending review record for a flagged claim. The
// snapshot is complete at creation; nothing is filled in later.
func NewRecord(input ClaimInput, assessment Assessment, threshold float64) *review.Record {
	return &review.Record{
		ReviewID: NewReviewID(),
		Status:   review.StatusPending,
		ClaimSnapshot: review.ClaimSnapshot{
			PolicyNumber:      input.PolicyNumber,
			PolicyholderName:  input.PolicyholderName,
			ClaimAmount:       input.ClaimAmount,
			ClaimDate:         input.ClaimDate,
			ReasonForClaim:    input.ReasonForClaim,
			DriverRating:      input.DriverRating,
			Age:               input.Age,
			PolicyType:        input.PolicyType,
			AccidentArea:      input.AccidentArea,
			PoliceReportFiled: input.PoliceReportFiled,
			FraudProbability:  assessment.Probability,
			RiskLevel:         assessment.RiskLevel,
			FlagReason:        fmt.Sprintf("Fraud probability %.2f at or above threshold %.2f", assessment.Probability, threshold),
			FraudIndicators:   assessment.Indicators,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// NewReviewID mints a stable review identifier.
func NewReviewID() string {
	return "REV-" + uuid.NewString()
}

func classify(score int) (string, string) {
	switch {
	case score >= 70:
		return RiskHigh, "REJECT - High fraud risk detected. Thorough investigation required."
	case score >= 40:
		return RiskMedium, "REVIEW - Moderate fraud risk. Manual verification strongly recommended."
	case score >= 20:
		return RiskLow, "CAUTION - Minor fraud indicators detected. Standard verification recommended."
	default:
		return RiskMinimal, "PROCEED - No significant fraud indicators detected."
	}
}

func daysBeforeExpiry(claimDate, expiryDate string) (int, bool) {
	if claimDate == "" || expiryDate == "" {
		return 0, false
	}
	for _, format := range claimDateFormats {
		claim, err := time.Parse(format, claimDate)
		if err != nil {
			continue
		}
		expiry, err := time.Parse(format, expiryDate)
		if err != nil {
			continue
		}
		return int(expiry.Sub(claim).Hours() / 24), true
	}
	return 0, false
}
