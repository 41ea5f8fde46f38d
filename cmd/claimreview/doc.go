// Package main hosts the claimreview CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the full review lifecycle: scoring and
// flagging claims, listing the pending queue, recording approve and reject
// decisions, browsing decision history, and environment checks plus
// configuration scaffolding. It centralizes configuration resolution, store
// access, and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
