// Package observability provides OpenTelemetry tracing and metrics for
// the taugate kernel, plus a queryable audit timeline and SLI/SLO
// tracking for propose/commit operations.
//
// # Tracing and metrics
//
// Initialize the provider at process startup:
//
//	p, err := observability.New(ctx, observability.DefaultConfig())
//	defer p.Shutdown(ctx)
//
// Track a kernel operation end to end:
//
//	ctx, done := p.TrackOperation(ctx, "propose", observability.MandateOperation(mandateID, "active")...)
//	defer done(err)
//
// # Audit timeline
//
// Record queryable, non-authoritative audit entries alongside the
// signed event log:
//
//	tl := observability.NewAuditTimeline()
//	tl.Record(observability.TimelineEntry{EntryType: observability.EntryTypeDecision, RunID: proposalID})
//	tl.Query(observability.TimelineQuery{RunID: proposalID})
package observability
