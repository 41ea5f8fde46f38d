package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"claimreview/internal/review"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the pending review queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueStatsCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims awaiting a decision in arrival order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []*review.Record
			err := ctx.withStore(func(store *review.Store) error {
				loaded, err := store.LoadPending(cmd.Context())
				if err != nil {
					return err
				}
				records = loaded
				return nil
			})
			if err != nil {
				// An unreadable store reads as an empty queue, whether the
				// open or the load fails.
				if !errors.Is(err, review.ErrStoreUnavailable) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				records = nil
			}
			if asJSON {
				return writeJSON(cmd, buildRecordViews(records))
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No claims awaiting review")
				return nil
			}
			table := renderTable(
				[]string{"Review ID", "Policy", "Amount", "Risk", "Probability", "Created"},
				buildPendingRows(records),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <review-id>",
		Short: "Show full detail for one pending review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *review.Store) error {
				record, err := store.GetPending(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if record == nil {
					// A decided record may already live in history.
					record, err = store.GetHistory(cmd.Context(), args[0])
					if err != nil {
						return err
					}
				}
				if record == nil {
					return fmt.Errorf("review %s not found", args[0])
				}
				if asJSON {
					return writeJSON(cmd, buildRecordView(record))
				}
				printRecordDetail(cmd, record)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newQueueStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize review volume and outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *review.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{
						"total":                 stats.Total,
						"pending":               stats.Pending,
						"approved":              stats.Approved,
						"rejected":              stats.Rejected,
						"avg_fraud_probability": stats.AvgFraudProbability,
					})
				}
				rows := [][]string{
					{"Total", fmt.Sprintf("%d", stats.Total)},
					{"Pending", fmt.Sprintf("%d", stats.Pending)},
					{"Approved", fmt.Sprintf("%d", stats.Approved)},
					{"Rejected", fmt.Sprintf("%d", stats.Rejected)},
					{"Avg fraud probability", displayProbability(stats.AvgFraudProbability)},
				}
				table := renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check review database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *review.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Review database", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Path", statusInfo, health.DBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Exists", boolKind(health.DatabaseExists), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Readable", boolKind(health.DatabaseReadable), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Integrity", boolKind(health.IntegrityCheck), "", colorize))
				if len(health.MissingTables) > 0 {
					fmt.Fprintln(out, renderStatusLine("Tables", statusError, fmt.Sprintf("missing %v", health.MissingTables), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Tables", statusOK, fmt.Sprintf("%v", health.TablesPresent), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Pending rows", statusInfo, fmt.Sprintf("%d", health.PendingCount), colorize))
				fmt.Fprintln(out, renderStatusLine("History rows", statusInfo, fmt.Sprintf("%d", health.HistoryCount), colorize))
				if health.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, health.Error, colorize))
				}
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all pending reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the pending queue without --force")
			}
			return ctx.withStore(func(store *review.Store) error {
				removed, err := store.ClearPending(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d pending reviews\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm removal of all pending reviews")
	return cmd
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}

func buildPendingRows(records []*review.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.ReviewID,
			record.ClaimSnapshot.PolicyNumber,
			displayAmount(record.ClaimSnapshot.ClaimAmount),
			displayRisk(record.ClaimSnapshot.RiskLevel),
			displayProbability(record.ClaimSnapshot.FraudProbability),
			displayTime(record.CreatedAt),
		})
	}
	return rows
}

func printRecordDetail(cmd *cobra.Command, record *review.Record) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader(record.ReviewID, colorize) {
		fmt.Fprintln(out, line)
	}

	snapshot := record.ClaimSnapshot
	fmt.Fprintln(out, renderStatusLine("Status", recordStatusKind(record.Status), displayStatus(record.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Policy", statusInfo, snapshot.PolicyNumber, colorize))
	if snapshot.PolicyholderName != "" {
		fmt.Fprintln(out, renderStatusLine("Policyholder", statusInfo, snapshot.PolicyholderName, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Amount", statusInfo, displayAmount(snapshot.ClaimAmount), colorize))
	fmt.Fprintln(out, renderStatusLine("Claim date", statusInfo, snapshot.ClaimDate, colorize))
	fmt.Fprintln(out, renderStatusLine("Reason", statusInfo, truncate(snapshot.ReasonForClaim, 72), colorize))
	fmt.Fprintln(out, renderStatusLine("Risk", riskKind(snapshot.RiskLevel), fmt.Sprintf("%s (%s)", displayRisk(snapshot.RiskLevel), displayProbability(snapshot.FraudProbability)), colorize))
	if snapshot.FlagReason != "" {
		fmt.Fprintln(out, renderStatusLine("Flagged because", statusWarn, snapshot.FlagReason, colorize))
	}
	for _, indicator := range snapshot.FraudIndicators {
		fmt.Fprintln(out, renderStatusLine("Indicator", statusWarn, fmt.Sprintf("%s (%s, +%d)", indicator.Description, indicator.Severity, indicator.Weight), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Created", statusInfo, displayTime(record.CreatedAt), colorize))
	if record.IsDecided() {
		fmt.Fprintln(out, renderStatusLine("Decision", statusInfo, string(record.Decision), colorize))
		fmt.Fprintln(out, renderStatusLine("Reviewer", statusInfo, record.ReviewerName, colorize))
		fmt.Fprintln(out, renderStatusLine("Notes", statusInfo, record.ReviewNotes, colorize))
		fmt.Fprintln(out, renderStatusLine("Decided", statusInfo, displayOptionalTime(record.DecidedAt), colorize))
	}
}

func recordStatusKind(status review.Status) statusKind {
	switch status {
	case review.StatusApproved:
		return statusOK
	case review.StatusRejected:
		return statusError
	default:
		return statusWarn
	}
}

func riskKind(level string) statusKind {
	switch displayRisk(level) {
	case "HIGH":
		return statusError
	case "MEDIUM":
		return statusWarn
	default:
		return statusInfo
	}
}

type recordView struct {
	ReviewID      string               `json:"review_id"`
	Status        string               `json:"status"`
	ClaimSnapshot review.ClaimSnapshot `json:"claim_snapshot"`
	CreatedAt     string               `json:"created_at"`
	Decision      string               `json:"decision,omitempty"`
	ReviewerName  string               `json:"reviewer_name,omitempty"`
	ReviewNotes   string               `json:"review_notes,omitempty"`
	DecidedAt     string               `json:"decided_at,omitempty"`
}

func buildRecordView(record *review.Record) recordView {
	view := recordView{
		ReviewID:      record.ReviewID,
		Status:        string(record.Status),
		ClaimSnapshot: record.ClaimSnapshot,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
		Decision:      string(record.Decision),
		ReviewerName:  record.ReviewerName,
		ReviewNotes:   record.ReviewNotes,
	}
	if record.DecidedAt != nil {
		view.DecidedAt = record.DecidedAt.Format(time.RFC3339)
	}
	return view
}

func buildRecordViews(records []*review.Record) []recordView {
	views := make([]recordView, 0, len(records))
	for _, record := range records {
		views = append(views, buildRecordView(record))
	}
	return views
}
