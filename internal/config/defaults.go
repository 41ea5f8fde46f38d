package config

const (
	defaultDataDir            = "~/.local/share/claimreview/data"
	defaultLogDir             = "~/.local/share/claimreview/logs"
	defaultMinNotesLength     = 20
	defaultReviewThreshold    = 0.5
	defaultHighValueAmount    = 100000
	defaultFrequentClaimCount = 3
	defaultRequestTimeout     = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Review: Review{
			MinNotesLength: defaultMinNotesLength,
		},
		Fraud: Fraud{
			ReviewThreshold:    defaultReviewThreshold,
			HighValueAmount:    defaultHighValueAmount,
			FrequentClaimCount: defaultFrequentClaimCount,
		},
		Audit: Audit{
			RequestTimeout: defaultRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
			Flagged:        true,
			Decisions:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
