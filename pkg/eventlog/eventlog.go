// Package eventlog implements the kernel's append-only, hash-chained,
// per-event-signed audit trail, extended beyond a plain content-addressed
// chain with a signer/signature pair on every entry: the event log is
// the kernel's sole authority for "did this mandate get revoked" and
// "what happened, in what order."
package eventlog

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taugate/kernel/pkg/canonicalize"
	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// Log is the append-only event sequence for one kernel instance.
type Log struct {
	mu       sync.RWMutex
	events   []types.Event
	byID     map[string]*types.Event
	keystore *keystore.Keystore
}

// New creates an empty event log backed by ks for signing and verification.
func New(ks *keystore.Keystore) *Log {
	return &Log{
		byID:     make(map[string]*types.Event),
		keystore: ks,
	}
}

// genesisHash is the sentinel prev_hash carried by the first event of a log.
const genesisHash = "genesis"

// Append builds, signs and stores a new event, returning the stored copy.
func (l *Log) Append(eventType types.EventType, signer types.ActorId, payload map[string]interface{}) (types.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var prevHash string
	if len(l.events) == 0 {
		prevHash = genesisHash
	} else {
		prev := l.events[len(l.events)-1]
		h, err := canonicalize.CanonicalHash(prev)
		if err != nil {
			return types.Event{}, fmt.Errorf("eventlog: hash previous event: %w", err)
		}
		prevHash = h
	}

	ev := types.Event{
		ID:        "event_" + uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
		Signer:    signer,
		PrevHash:  prevHash,
	}

	digest, err := signingDigest(ev)
	if err != nil {
		return types.Event{}, fmt.Errorf("eventlog: compute signing digest: %w", err)
	}
	sig, err := l.keystore.Sign(signer, []byte(digest))
	if err != nil {
		return types.Event{}, fmt.Errorf("eventlog: sign event: %w", err)
	}
	ev.Signature = sig

	l.events = append(l.events, ev)
	stored := &l.events[len(l.events)-1]
	l.byID[ev.ID] = stored

	return ev, nil
}

// signingDigest is the canonical hash of the event with its signature
// field removed — the same "canonicalize then strip signature" pattern
// the mandate module uses.
func signingDigest(ev types.Event) (string, error) {
	raw, err := json.Marshal(ev)
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

// Filter selects a subset of the log for Query.
type Filter struct {
	Type   types.EventType
	Signer types.ActorId
	Since  *time.Time
	Limit  int
}

// Query returns events matching filter, in append order.
func (l *Log) Query(f Filter) []types.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Event, 0)
	for _, ev := range l.events {
		if f.Type != "" && ev.Type != f.Type {
			continue
		}
		if f.Signer != "" && ev.Signer != f.Signer {
			continue
		}
		if f.Since != nil && ev.Timestamp.Before(*f.Since) {
			continue
		}
		out = append(out, ev)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// IsMandateRevoked reports whether any MANDATE_REVOKE event exists for
// mandateID. Revocation is monotonic: once true, always true; repeated
// revoke events are tolerated, not an error.
func (l *Log) IsMandateRevoked(mandateID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, ev := range l.events {
		if ev.Type != types.EventMandateRevoke {
			continue
		}
		if id, ok := ev.Payload["mandate_id"].(string); ok && id == mandateID {
			return true
		}
	}
	return false
}

// VerifyResult is the outcome of VerifyChain.
type VerifyResult struct {
	Valid          bool
	Errors         []string
	EventsVerified int
}

// VerifyChain recomputes every prev_hash link and re-verifies every
// signature, using ks to look up each event's signer's public key.
func (l *Log) VerifyChain(ks *keystore.Keystore) VerifyResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := VerifyResult{Valid: true}
	expectedPrev := genesisHash

	for i, ev := range l.events {
		if ev.PrevHash != expectedPrev {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("event %d: prev_hash mismatch", i))
		}

		digest, err := signingDigest(ev)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("event %d: hash error: %v", i, err))
			continue
		}
		if !ks.Verify(ev.Signer, []byte(digest), ev.Signature) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("event %d: signature invalid", i))
		}

		h, err := canonicalize.CanonicalHash(ev)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("event %d: hash error: %v", i, err))
			continue
		}
		expectedPrev = h
		result.EventsVerified++
	}

	return result
}

// Export returns every stored event, in append order.
func (l *Log) Export() []types.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Import replaces the entire event sequence. Callers must re-run
// VerifyChain afterward — Import performs no validation itself.
func (l *Log) Import(events []types.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = make([]types.Event, len(events))
	copy(l.events, events)

	l.byID = make(map[string]*types.Event, len(events))
	for i := range l.events {
		l.byID[l.events[i].ID] = &l.events[i]
	}
}

// Len returns the number of stored events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
