// Package errs defines the stable, externally-visible error strings the
// sovereignty kernel returns. Callers match on these with errors.Is, so
// the sentinel identity matters more than the message text.
package errs

import "errors"

var (
	// ErrProposalNotFound is returned by commit when the proposal id is unknown.
	ErrProposalNotFound = errors.New("PROPOSAL_NOT_FOUND")

	// ErrProposalCommitted is returned by commit on a proposal already committed.
	ErrProposalCommitted = errors.New("PROPOSAL_COMMITTED")

	// ErrProposalRejected is returned by commit on a proposal already rejected.
	ErrProposalRejected = errors.New("PROPOSAL_REJECTED")

	// ErrMissingPrivateKey is returned by the keystore when asked to sign
	// with an actor that has no registered private key.
	ErrMissingPrivateKey = errors.New("MissingPrivateKey")
)

// GateError is a typed, fail-closed gate rejection. Its Error() form is
// "<CODE>: <detail>", matching the stable strings INVALID_MANDATE,
// REVOKED_MANDATE and SCOPE_VIOLATION from the external interface.
type GateError struct {
	Code   string
	Detail string
}

func (e *GateError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

func NewInvalidMandate(detail string) *GateError {
	return &GateError{Code: "INVALID_MANDATE", Detail: detail}
}

func NewRevokedMandate(detail string) *GateError {
	return &GateError{Code: "REVOKED_MANDATE", Detail: detail}
}

func NewScopeViolation(detail string) *GateError {
	return &GateError{Code: "SCOPE_VIOLATION", Detail: detail}
}
