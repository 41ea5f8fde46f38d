// Package fraud scores claims with the rule-based indicators that gate the
// human-review queue. A claim whose fraud probability crosses the configured
// threshold is turned into a pending review record; everything below the
// threshold proceeds without human intervention.
package fraud
