// Package mandate implements the mandate lifecycle: creation,
// canonical-signing, verification, revocation, and the scope/budget
// checks the τ-Gate kernel's gates rely on.
package mandate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taugate/kernel/pkg/canonicalize"
	"github.com/taugate/kernel/pkg/eventlog"
	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// Module ties mandate operations to a keystore and the event log that
// is the authority for revocation.
type Module struct {
	keystore *keystore.Keystore
	log      *eventlog.Log
}

// New creates a mandate module over ks and log.
func New(ks *keystore.Keystore, log *eventlog.Log) *Module {
	return &Module{keystore: ks, log: log}
}

// Create builds a new, unsigned mandate and records a MANDATE_CREATE
// event for it. Call Sign afterward to produce a usable mandate.
func (m *Module) Create(issuer, delegate types.ActorId, scope types.Scope, validity types.Validity, constraints map[string]interface{}) (types.Mandate, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return types.Mandate{}, fmt.Errorf("mandate: generate id: %w", err)
	}

	md := types.Mandate{
		MandateID:   "mandate_" + id.String(),
		Issuer:      issuer,
		Delegate:    delegate,
		Scope:       scope,
		Validity:    validity,
		Constraints: constraints,
		CreatedAt:   time.Now().UTC(),
		Signature:   "",
	}

	if m.log != nil {
		_, err := m.log.Append(types.EventMandateCreate, issuer, map[string]interface{}{
			"mandate_id": md.MandateID,
			"delegate":   string(delegate),
		})
		if err != nil {
			return types.Mandate{}, fmt.Errorf("mandate: record creation event: %w", err)
		}
	}

	return md, nil
}

// Canonicalize returns the canonical signing digest for a mandate: the
// canonical JSON of the mandate with its signature field removed, not
// emptied-but-present-elsewhere — the field is excluded from hashing.
func Canonicalize(md types.Mandate) (string, error) {
	raw, err := json.Marshal(md)
	if err != nil {
		return "", err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", err
	}
	delete(fields, "signature")
	return canonicalize.CanonicalHash(fields)
}

// Sign signs md under the issuer's key and returns the signed mandate.
func (m *Module) Sign(md types.Mandate) (types.Mandate, error) {
	digest, err := Canonicalize(md)
	if err != nil {
		return types.Mandate{}, fmt.Errorf("mandate: canonicalize: %w", err)
	}
	sig, err := m.keystore.Sign(md.Issuer, []byte(digest))
	if err != nil {
		return types.Mandate{}, fmt.Errorf("mandate: sign: %w", err)
	}
	md.Signature = sig
	return md, nil
}

// Verify checks a mandate's temporal validity, revocation status and
// signature, accumulating every failure it finds in order: not_before,
// not_after, revoked, signature. Valid() is true iff Errors is empty.
type VerifyResult struct {
	Errors []string
}

func (r VerifyResult) Valid() bool { return len(r.Errors) == 0 }

func (m *Module) Verify(md types.Mandate) VerifyResult {
	var result VerifyResult
	now := time.Now().UTC()

	if now.Before(md.Validity.NotBefore) {
		result.Errors = append(result.Errors, "mandate not yet valid")
	}
	if !md.Validity.NotAfter.IsZero() && now.After(md.Validity.NotAfter) {
		result.Errors = append(result.Errors, "mandate expired")
	}
	if m.log != nil && m.log.IsMandateRevoked(md.MandateID) {
		result.Errors = append(result.Errors, "mandate revoked")
	}

	digest, err := Canonicalize(md)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("canonicalization failed: %v", err))
	} else if !m.keystore.Verify(md.Issuer, []byte(digest), md.Signature) {
		result.Errors = append(result.Errors, "signature invalid")
	}

	return result
}

// Revoke appends a MANDATE_REVOKE event for md, signed by the issuer.
// Idempotent in effect: repeated revocations are tolerated, the kernel
// only cares whether any revoke event exists.
func (m *Module) Revoke(md types.Mandate, reason string) error {
	_, err := m.log.Append(types.EventMandateRevoke, md.Issuer, map[string]interface{}{
		"mandate_id": md.MandateID,
		"reason":     reason,
	})
	if err != nil {
		return fmt.Errorf("mandate: revoke: %w", err)
	}
	return nil
}

// matchesWildcard implements the wildcard scope rule: "*" matches
// anything including the empty string; "prefix:*" matches "prefix:"
// and "prefix:x" but not the bare "prefix".
func matchesWildcard(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, ":*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(value, prefix)
	}
	return pattern == value
}

// IsActionAllowed checks action against the mandate's scope.actions.
func IsActionAllowed(md types.Mandate, action string) bool {
	for _, p := range md.Scope.Actions {
		if matchesWildcard(p, action) {
			return true
		}
	}
	return false
}

// IsResourceAllowed checks resource against the mandate's scope.resources.
func IsResourceAllowed(md types.Mandate, resource string) bool {
	for _, p := range md.Scope.Resources {
		if matchesWildcard(p, resource) {
			return true
		}
	}
	return false
}

// IsWithinBudget checks cost against scope.max_value. An unset max_value
// always passes; a max_value of exactly 0 means zero budget, so any
// positive cost fails.
func IsWithinBudget(md types.Mandate, cost float64) bool {
	if md.Scope.MaxValue == nil {
		return true
	}
	return cost <= *md.Scope.MaxValue
}
