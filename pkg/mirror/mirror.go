// Package mirror captures the request/response round trip of a
// proposed action independent of whether the τ-Gate kernel ever
// commits it — the provenance record an agent's own reasoning
// produced before authorization was checked.
package mirror

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taugate/kernel/pkg/canonicalize"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// Store holds mirror entries in memory, keyed by id.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*types.MirrorEntry
}

func New() *Store {
	return &Store{entries: make(map[string]*types.MirrorEntry)}
}

// CaptureRequest records a proposal's request-side state and returns
// the new entry, whose ID is referenced by the resulting SUGGESTION
// event and later by the issued receipt's mirror_ref/request_hash.
func (s *Store) CaptureRequest(agentID types.ActorId, prompt string, providerMetadata map[string]interface{}) (types.MirrorEntry, error) {
	id := "mirror_" + uuid.NewString()

	requestHash, err := canonicalize.CanonicalHash(map[string]interface{}{
		"agent_id":          string(agentID),
		"prompt":            prompt,
		"provider_metadata": providerMetadata,
	})
	if err != nil {
		return types.MirrorEntry{}, fmt.Errorf("mirror: hash request: %w", err)
	}

	entry := types.MirrorEntry{
		ID:               id,
		AgentID:          agentID,
		Prompt:           prompt,
		RequestHash:      requestHash,
		ProviderMetadata: providerMetadata,
		Timestamp:        time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries[id] = &entry
	s.mu.Unlock()

	return entry, nil
}

// CaptureResponse records the response side of a previously captured
// entry. response_hash covers the full response object, including any
// provider metadata merged in at response time.
func (s *Store) CaptureResponse(id string, response interface{}, providerMetadata map[string]interface{}) (types.MirrorEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return types.MirrorEntry{}, fmt.Errorf("mirror: entry %q not found", id)
	}

	merged := mergeMetadata(entry.ProviderMetadata, providerMetadata)

	responseHash, err := canonicalize.CanonicalHash(map[string]interface{}{
		"response":          response,
		"provider_metadata": merged,
	})
	if err != nil {
		return types.MirrorEntry{}, fmt.Errorf("mirror: hash response: %w", err)
	}

	entry.Response = response
	entry.ResponseHash = responseHash
	entry.ProviderMetadata = merged

	return *entry, nil
}

// Get returns a stored entry by id.
func (s *Store) Get(id string) (types.MirrorEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return types.MirrorEntry{}, false
	}
	return *entry, true
}

func mergeMetadata(base, extra map[string]interface{}) map[string]interface{} {
	if base == nil && extra == nil {
		return nil
	}
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
