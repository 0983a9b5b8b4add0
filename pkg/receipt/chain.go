package receipt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taugate/kernel/pkg/canonicalize"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// Chain is the append-only, hash-chained receipt ledger. Each link
// hashes (receipt_id, canonical hash of the receipt data, previous
// link's hash, index, timestamp) — never the receipt's own signature.
type Chain struct {
	mu    sync.RWMutex
	links []types.ReceiptChainLink
}

func NewChain() *Chain {
	return &Chain{}
}

// Add appends rc to the chain and returns the new link.
func (c *Chain) Add(rc types.Receipt) (types.ReceiptChainLink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dataHash, err := signingDigest(rc)
	if err != nil {
		return types.ReceiptChainLink{}, fmt.Errorf("receiptchain: hash receipt: %w", err)
	}

	index := len(c.links)
	var previousHash string

	link := types.ReceiptChainLink{
		ReceiptID: rc.ReceiptID,
		Index:     index,
		Timestamp: time.Now().UTC(),
	}

	if index == 0 {
		// The genesis link's previous_hash is its own hash, per spec.
		previousHash = ""
	} else {
		previousHash = c.links[index-1].ReceiptHash
	}
	link.PreviousHash = previousHash

	hash, err := linkHash(rc.ReceiptID, dataHash, previousHash, index, link.Timestamp)
	if err != nil {
		return types.ReceiptChainLink{}, err
	}
	link.ReceiptHash = hash

	if index == 0 {
		link.PreviousHash = link.ReceiptHash
	}

	c.links = append(c.links, link)
	return link, nil
}

func linkHash(receiptID, dataHash, previousHash string, index int, ts time.Time) (string, error) {
	return canonicalize.CanonicalHash(map[string]interface{}{
		"receipt_id":    receiptID,
		"data_hash":     dataHash,
		"previous_hash": previousHash,
		"index":         int64(index),
		"timestamp":     ts,
	})
}

// Verify checks the stored chain links' internal consistency (indices,
// genesis self-link, previous_hash continuity); it does not recompute
// link or data hashes from receipt objects.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i, link := range c.links {
		if link.Index != i {
			return fmt.Errorf("receiptchain: link %d has index %d", i, link.Index)
		}
		if i == 0 {
			if link.PreviousHash != link.ReceiptHash {
				return fmt.Errorf("receiptchain: genesis link previous_hash must equal its own hash")
			}
			continue
		}
		if link.PreviousHash != c.links[i-1].ReceiptHash {
			return fmt.Errorf("receiptchain: chain broken at index %d", i)
		}
	}
	return nil
}

// GetChainProof returns the Merkle-free root hash used as the chain's
// proof of contents: H(concat(all receipt hashes in order)).
func (c *Chain) GetChainProof() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var sb strings.Builder
	for _, link := range c.links {
		sb.WriteString(link.ReceiptHash)
	}
	return canonicalize.HashBytes([]byte(sb.String())), nil
}

// Links returns a copy of the stored chain links.
func (c *Chain) Links() []types.ReceiptChainLink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.ReceiptChainLink, len(c.links))
	copy(out, c.links)
	return out
}
