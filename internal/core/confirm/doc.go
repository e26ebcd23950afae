// Package confirm coordinates out-of-band human confirmations.
//
// A Coordinator owns a single confirmation slot. RequestConfirmation arms a
// deadline, publishes the request and blocks the calling goroutine until the
// request is approved, denied, expires or the caller's context is done.
// Approve and Deny are driven by an input-event source.
//
// Resolution is a compare-and-swap on the request outcome, so exactly one of
// the competing paths (signal, timer, cancellation) takes effect and the
// others are no-ops. Each armed request carries a generation number; a timer
// that fires for an older generation is ignored.
//
// Only one request is outstanding at a time. Further requests either wait for
// admission (BusyQueue) or are denied immediately (BusyReject).
package confirm
