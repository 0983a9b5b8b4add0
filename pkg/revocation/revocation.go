// Package revocation implements the legacy, schema-compatibility-only
// revocation chain. It is NOT authoritative — pkg/eventlog's
// MANDATE_REVOKE events are the authority for whether a mandate is
// revoked. This package exists so deployments that still emit the
// older ordered-hash-chain revocation format can produce and read it.
package revocation

import (
	"fmt"
	"sync"
	"time"

	"github.com/taugate/kernel/pkg/canonicalize"
	"github.com/taugate/kernel/pkg/taugate/types"
)

const chainLabel = "revoke"

// Chain is an ordered, hash-linked sequence of revocation markers.
type Chain struct {
	mu    sync.RWMutex
	links []types.RevocationLink
}

func New() *Chain {
	return &Chain{}
}

// Append records a new revocation marker for mandateID.
func (c *Chain) Append(mandateID, reason string) (types.RevocationLink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prevHash string
	if len(c.links) > 0 {
		prevHash = c.links[len(c.links)-1].Hash
	}

	ts := time.Now().UTC()
	hash, err := canonicalize.CanonicalHash(map[string]interface{}{
		"label":      chainLabel,
		"mandate_id": mandateID,
		"reason":     reason,
		"prev_hash":  prevHash,
		"timestamp":  ts,
	})
	if err != nil {
		return types.RevocationLink{}, fmt.Errorf("revocation: hash link: %w", err)
	}

	link := types.RevocationLink{Hash: hash, Timestamp: ts}
	c.links = append(c.links, link)
	return link, nil
}

// Links returns a copy of the stored chain.
//
// The link list is the chain's persisted form, and it is lossy: only
// the link hashes and timestamps survive, not the mandate_id/reason
// that produced each hash, so a link's hash cannot be recomputed from
// the persisted form. The event log keeps this information because it
// stores the full payload.
func (c *Chain) Links() []types.RevocationLink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.RevocationLink, len(c.links))
	copy(out, c.links)
	return out
}

// FromLinks reconstructs a chain from its persisted link list. Append
// on the rebuilt chain links new entries to the last stored hash; this
// package has no method that recomputes or checks existing link hashes.
func FromLinks(links []types.RevocationLink) *Chain {
	c := &Chain{links: make([]types.RevocationLink, len(links))}
	copy(c.links, links)
	return c
}
