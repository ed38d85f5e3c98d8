// Package pipeline holds the cross-cutting plumbing every extraction stage
// shares: the error taxonomy used to classify failures, the Wrap helper that
// tags errors with stage context, and the context keys that carry run and
// stage identity into structured logs.
//
// Stages should return errors built with Wrap so the driver and the CLI can
// distinguish fatal configuration problems from transient I/O failures
// without string matching.
package pipeline
