package testsupport

import (
	"path/filepath"
	"testing"

	"claimreview/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithReviewThreshold overrides the fraud review threshold on the test config.
func WithReviewThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fraud.ReviewThreshold = threshold
	}
}

// WithAuditWebhook points the audit sink at the given URL.
func WithAuditWebhook(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audit.WebhookURL = url
	}
}

// WithNtfyTopic points the notifier at the given topic URL.
func WithNtfyTopic(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = url
	}
}
