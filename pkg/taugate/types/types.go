// Package types holds the wire data model shared by every sovereignty
// kernel component: actors, mandates, events, receipts and the
// proposal bookkeeping the τ-Gate kernel maintains in flight.
package types

import (
	"regexp"
	"time"
)

// ActorRole is one of the four recognized participant kinds.
type ActorRole string

const (
	RoleUser     ActorRole = "user"
	RoleAgent    ActorRole = "agent"
	RoleProvider ActorRole = "provider"
	RoleAdapter  ActorRole = "adapter"
)

var actorIDPattern = regexp.MustCompile(`^(user|agent|provider|adapter):[A-Za-z0-9_-]+$`)

// ActorId is a "role:name" identifier, e.g. "agent:shopping-bot-7".
type ActorId string

// Valid reports whether the actor id matches the required role:name form.
func (a ActorId) Valid() bool {
	return actorIDPattern.MatchString(string(a))
}

// Role extracts the role portion of the actor id. Returns "" if malformed.
func (a ActorId) Role() ActorRole {
	s := string(a)
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return ActorRole(s[:i])
		}
	}
	return ""
}

// Scope describes what a mandate authorizes.
type Scope struct {
	Actions   []string `json:"actions"`
	Resources []string `json:"resources"`
	MaxValue  *float64 `json:"max_value,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

// Validity is the time window a mandate is effective within.
type Validity struct {
	NotBefore time.Time `json:"not_before"`
	NotAfter  time.Time `json:"not_after"`
}

// Mandate is a signed, scoped grant of authority from an issuer to a delegate.
type Mandate struct {
	MandateID  string                 `json:"mandate_id"`
	Issuer     ActorId                `json:"issuer"`
	Delegate   ActorId                `json:"delegate"`
	Scope      Scope                  `json:"scope"`
	Validity   Validity               `json:"validity"`
	Constraints map[string]interface{} `json:"constraints,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	Signature  string                 `json:"signature"`
}

// EventType enumerates the recognized event-log entry kinds.
type EventType string

const (
	EventMandateCreate      EventType = "MANDATE_CREATE"
	EventMandateRevoke      EventType = "MANDATE_REVOKE"
	EventSuggestion         EventType = "SUGGESTION"
	EventCommitted          EventType = "COMMITTED"
	EventReceiptIssued      EventType = "RECEIPT_ISSUED"
	EventProposalRejected   EventType = "PROPOSAL_REJECTED"
	EventVerificationFailed EventType = "VERIFICATION_FAILED"
	EventExecutionFailed    EventType = "EXECUTION_FAILED"
)

// Event is one append-only, signed, hash-chained entry in the event log.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
	Signer    ActorId                `json:"signer"`
	Signature string                 `json:"signature"`
	PrevHash  string                 `json:"prev_hash"`
}

// Receipt is a signed record that a mandate-authorized action executed.
type Receipt struct {
	ReceiptID        string                 `json:"receipt_id"`
	MandateID        string                 `json:"mandate_id"`
	Actor            ActorId                `json:"actor"`
	Action           string                 `json:"action"`
	RequestHash      string                 `json:"request_hash"`
	ResponseHash     string                 `json:"response_hash"`
	ProviderMetadata map[string]interface{} `json:"provider_metadata,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
	MirrorRef        string                 `json:"mirror_ref"`
	Signature        string                 `json:"signature"`
}

// ReceiptChainLink binds a receipt into the append-only receipt ledger.
type ReceiptChainLink struct {
	ReceiptHash  string    `json:"receipt_hash"`
	ReceiptID    string    `json:"receipt_id"`
	PreviousHash string    `json:"previous_hash"`
	Index        int       `json:"index"`
	Timestamp    time.Time `json:"timestamp"`
}

// MirrorEntry captures a proposed action's request/response round trip
// for provenance, independent of whether it is ever committed.
type MirrorEntry struct {
	ID               string                 `json:"id"`
	AgentID          ActorId                `json:"agent_id"`
	Prompt           string                 `json:"prompt"`
	RequestHash      string                 `json:"request_hash"`
	Response         interface{}            `json:"response,omitempty"`
	ResponseHash     string                 `json:"response_hash,omitempty"`
	ProviderMetadata map[string]interface{} `json:"provider_metadata,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
}

// ProposalStatus tracks a proposal through the τ-Gate state machine.
type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalCommitted ProposalStatus = "committed"
	ProposalRejected  ProposalStatus = "rejected"
)

// Proposal is an in-flight τ-Gate request awaiting a commit decision.
type Proposal struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	MirrorRef string         `json:"mirror_ref"`
	EventID   string         `json:"event_id"`
	Status    ProposalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// RevocationLink is one entry in the schema-compatible revocation chain.
// It is not authoritative; the event log is. See pkg/revocation.
type RevocationLink struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}
