// Package tasks implements playlist reconciliation between a source library
// and a target catalog.
//
// The core abstraction is [ReconcileEngine], which orchestrates the full
// pipeline: export the source playlist, dedup it, run the exact code-based
// phase, fan the remainder out to fuzzy search, merge the outcomes in input
// order, then create the target playlist.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
//
// Failure semantics:
//   - a single track failing to resolve or search degrades to a not-found
//     outcome for that track
//   - rate limiting and authorization failures abort the run; partial
//     outcomes computed so far are returned alongside the error
//   - context cancellation aborts the run with the context's error
package tasks
