package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"claimreview/internal/fraud"
	"claimreview/internal/lifecycle"
	"claimreview/internal/review"
)

func newFlagCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "flag <claim.json>",
		Short: "Score a claim and queue it for human review when warranted",
		Long: "Runs the rule-based fraud indicators against the claim described by the\n" +
			"given JSON file (use '-' for stdin). Claims that cross the configured\n" +
			"review threshold are appended to the pending queue; --force queues the\n" +
			"claim regardless of its score.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readClaimInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			assessment := fraud.Score(input, cfg.Fraud)
			if asJSON {
				if err := writeJSON(cmd, map[string]any{
					"policy_number":     input.PolicyNumber,
					"risk_score":        assessment.RiskScore,
					"fraud_probability": assessment.Probability,
					"risk_level":        assessment.RiskLevel,
					"fraud_indicators":  assessment.Indicators,
					"recommendation":    assessment.Recommendation,
					"requires_review":   assessment.RequiresReview,
				}); err != nil {
					return err
				}
			} else {
				printAssessment(cmd, input, assessment)
			}

			if !assessment.RequiresReview && !force {
				if !asJSON {
					fmt.Fprintln(cmd.OutOrStdout(), "Claim is below the review threshold; nothing queued")
				}
				return nil
			}

			record := fraud.NewRecord(input, assessment, cfg.Fraud.ReviewThreshold)
			return ctx.withController(func(controller *lifecycle.Controller, _ *review.Store) error {
				if err := controller.Flag(cmd.Context(), record); err != nil {
					return err
				}
				if !asJSON {
					fmt.Fprintf(cmd.OutOrStdout(), "Queued %s for review\n", record.ReviewID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Queue the claim even when it scores below the review threshold")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the assessment as JSON")
	return cmd
}

func readClaimInput(path string, stdin io.Reader) (fraud.ClaimInput, error) {
	var input fraud.ClaimInput

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return input, fmt.Errorf("read claim: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return input, fmt.Errorf("parse claim: %w", err)
	}
	if strings.TrimSpace(input.PolicyNumber) == "" {
		return input, fmt.Errorf("claim is missing policy_number")
	}
	return input, nil
}

func printAssessment(cmd *cobra.Command, input fraud.ClaimInput, assessment fraud.Assessment) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Fraud assessment "+input.PolicyNumber, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Amount", statusInfo, displayAmount(input.ClaimAmount), colorize))
	fmt.Fprintln(out, renderStatusLine("Risk score", statusInfo, fmt.Sprintf("%d", assessment.RiskScore), colorize))
	fmt.Fprintln(out, renderStatusLine("Risk level", riskKind(assessment.RiskLevel), fmt.Sprintf("%s (%s)", assessment.RiskLevel, displayProbability(assessment.Probability)), colorize))
	for _, indicator := range assessment.Indicators {
		fmt.Fprintln(out, renderStatusLine("Indicator", statusWarn, fmt.Sprintf("%s (%s, +%d)", indicator.Description, indicator.Severity, indicator.Weight), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Recommendation", statusInfo, assessment.Recommendation, colorize))
}
