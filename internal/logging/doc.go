// Package logging builds the slog loggers used across claimreview.
//
// Two handler formats are supported: a compact console handler that promotes
// the component attribute into the message prefix, and a JSON handler for
// machine consumption. Output fans out to stdout/stderr plus the configured
// log file.
package logging
