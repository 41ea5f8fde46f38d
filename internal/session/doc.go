// Package session holds the transient per-session view model. Queue contents
// always come from the store; session state only remembers what the user is
// looking at and can be rebuilt from the store at any point.
package session
