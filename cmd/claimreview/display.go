package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"claimreview/internal/review"
)

var titleCaser = cases.Title(language.English)

// displayStatus renders a stored status value for table output ("Pending",
// "Approved", "Rejected").
func displayStatus(status review.Status) string {
	return titleCaser.String(string(status))
}

// displayRisk keeps risk levels in their stored upper-case form but tolerates
// mixed-case input from older records.
func displayRisk(level string) string {
	trimmed := strings.TrimSpace(level)
	if trimmed == "" {
		return "-"
	}
	return strings.ToUpper(trimmed)
}

func displayAmount(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func displayProbability(probability float64) string {
	return fmt.Sprintf("%.0f%%", probability*100)
}

func displayTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func displayOptionalTime(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return displayTime(*ts)
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
