// Package pipeline orchestrates the processing phases: fetch, store,
// attachment extraction, summarization, classification, action execution
// and reply delivery.
//
// Each phase is optional and enabled per run through Options. Failures are
// isolated per email; a run only aborts when the mail provider itself
// cannot be reached. All external services and the store are consumed
// through small interfaces so tests can run against in-memory fakes.
package pipeline
