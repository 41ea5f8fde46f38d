package testsupport

import (
	"fmt"
	"testing"

	"claimreview/internal/config"
	"claimreview/internal/review"
)

// MustOpenStore opens a review store against the test config and closes it
// when the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *review.Store {
	t.Helper()

	store, err := review.Open(cfg)
	if err != nil {
		t.Fatalf("open review store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SampleRecord builds a pending record with a complete claim snapshot. The
// suffix keeps ids and policy numbers unique within a test.
func SampleRecord(suffix string) *review.Record {
	return &review.Record{
		ReviewID: fmt.Sprintf("REV-test-%s", suffix),
		Status:   review.StatusPending,
		ClaimSnapshot: review.ClaimSnapshot{
			PolicyNumber:      fmt.Sprintf("POL-%s", suffix),
			PolicyholderName:  "Alex Example",
			ClaimAmount:       48000,
			ClaimDate:         "2024-03-12",
			ReasonForClaim:    "Rear-end collision",
			DriverRating:      "B",
			Age:               41,
			PolicyType:        "comprehensive",
			AccidentArea:      "Urban",
			PoliceReportFiled: "Yes",
			FraudProbability:  0.65,
			RiskLevel:         "MEDIUM",
			FlagReason:        "Fraud probability 0.65 at or above threshold 0.50",
		},
	}
}
