// Package observability provides kernel-specific instrumentation helpers.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Kernel-specific semantic convention attributes.
var (
	// Actor attributes
	AttrActorID   = attribute.Key("taugate.actor.id")
	AttrActorRole = attribute.Key("taugate.actor.role")

	// Mandate attributes
	AttrMandateID     = attribute.Key("taugate.mandate.id")
	AttrMandateStatus = attribute.Key("taugate.mandate.status")

	// Proposal/gate attributes
	AttrProposalID   = attribute.Key("taugate.proposal.id")
	AttrGateDecision = attribute.Key("taugate.gate.decision")
	AttrGateLatency  = attribute.Key("taugate.gate.latency_ms")

	// Compliance attributes
	AttrJurisdiction = attribute.Key("taugate.compliance.jurisdiction")
	AttrRegulation   = attribute.Key("taugate.compliance.regulation")
	AttrComplianceOK = attribute.Key("taugate.compliance.compliant")

	// Crypto attributes
	AttrCryptoAlgorithm = attribute.Key("taugate.crypto.algorithm")
	AttrCryptoOperation = attribute.Key("taugate.crypto.operation")
	AttrCryptoKeyID     = attribute.Key("taugate.crypto.key_id")
)

// MandateOperation creates attributes for mandate lifecycle events.
func MandateOperation(mandateID, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrMandateID.String(mandateID),
		AttrMandateStatus.String(status),
	}
}

// GateOperation creates attributes for a τ-Gate decision.
func GateOperation(proposalID, decision string, latencyMs float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrProposalID.String(proposalID),
		AttrGateDecision.String(decision),
		AttrGateLatency.Float64(latencyMs),
	}
}

// ComplianceOperation creates attributes for compliance checks.
func ComplianceOperation(jurisdiction, regulation string, compliant bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrJurisdiction.String(jurisdiction),
		AttrRegulation.String(regulation),
		AttrComplianceOK.Bool(compliant),
	}
}

// CryptoOperation creates attributes for cryptographic operations.
func CryptoOperation(algorithm, operation, keyID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrCryptoAlgorithm.String(algorithm),
		AttrCryptoOperation.String(operation),
		AttrCryptoKeyID.String(keyID),
	}
}

// SpanFromContext extracts the span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanStatus sets the span status based on error.
func SetSpanStatus(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
