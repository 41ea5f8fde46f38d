// Package preflight provides readiness checks for the filesystem paths and
// HTTP collaborators claimreview depends on. The CLI "preflight" command runs
// them all and renders a status line per check.
package preflight
