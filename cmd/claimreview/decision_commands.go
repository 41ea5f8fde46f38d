package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"claimreview/internal/lifecycle"
	"claimreview/internal/review"
)

func newApproveCommand(ctx *commandContext) *cobra.Command {
	return newDecisionCommand(ctx, review.DecisionApprove,
		"approve <review-id>",
		"Approve a pending claim review")
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	return newDecisionCommand(ctx, review.DecisionReject,
		"reject <review-id>",
		"Reject a pending claim review")
}

func newDecisionCommand(ctx *commandContext, decision review.Decision, use, short string) *cobra.Command {
	var reviewer string
	var notes string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewID := args[0]
			return ctx.withController(func(controller *lifecycle.Controller, _ *review.Store) error {
				record, err := controller.SubmitDecision(cmd.Context(), reviewID, string(decision), reviewer, notes)
				if err != nil {
					return decisionError(reviewID, err)
				}
				if asJSON {
					return writeJSON(cmd, buildRecordView(record))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s by %s\n", record.ReviewID, displayStatus(record.Status), record.ReviewerName)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&reviewer, "reviewer", "r", "", "Name of the reviewer making the decision")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", fmt.Sprintf("Decision justification (at least %d characters)", review.MinNotesLength))
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the decided record as JSON")
	_ = cmd.MarkFlagRequired("reviewer")
	_ = cmd.MarkFlagRequired("notes")
	return cmd
}

// decisionError keeps the underlying sentinel in the chain while giving the
// operator a message that names the review.
func decisionError(reviewID string, err error) error {
	switch {
	case errors.Is(err, review.ErrNotFound):
		return fmt.Errorf("review %s is not in the pending queue: %w", reviewID, err)
	case errors.Is(err, review.ErrAlreadyDecided):
		return fmt.Errorf("review %s already has a recorded decision: %w", reviewID, err)
	default:
		return err
	}
}
