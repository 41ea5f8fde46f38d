package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"claimreview/internal/review"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List decided reviews in decision order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *review.Store) error {
				records, err := store.History(cmd.Context())
				if err != nil {
					return err
				}
				if limit > 0 && len(records) > limit {
					records = records[len(records)-limit:]
				}
				if asJSON {
					return writeJSON(cmd, buildRecordViews(records))
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No decided reviews yet")
					return nil
				}
				table := renderTable(
					[]string{"Review ID", "Policy", "Amount", "Decision", "Reviewer", "Decided"},
					buildHistoryRows(records),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the most recent N decisions")
	return cmd
}

func buildHistoryRows(records []*review.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.ReviewID,
			record.ClaimSnapshot.PolicyNumber,
			displayAmount(record.ClaimSnapshot.ClaimAmount),
			string(record.Decision),
			record.ReviewerName,
			displayOptionalTime(record.DecidedAt),
		})
	}
	return rows
}
