// Package notifications delivers reviewer-facing push notifications via ntfy.
// The service degrades to a noop when no topic is configured, so callers
// never branch on notification availability.
package notifications
