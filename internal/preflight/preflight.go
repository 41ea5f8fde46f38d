package preflight

import (
	"context"

	"claimreview/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckFreeSpace("Data directory space", cfg.Paths.DataDir))

	if cfg.Audit.WebhookURL != "" {
		results = append(results, CheckEndpoint(ctx, "Audit webhook", cfg.Audit.WebhookURL))
	}
	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckEndpoint(ctx, "Notification topic", cfg.Notifications.NtfyTopic))
	}

	return results
}
