// Package receipt implements receipt issuance/verification and the
// hash-chained receipt ledger the kernel appends every committed
// receipt to.
package receipt

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taugate/kernel/pkg/canonicalize"
	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// Module issues and verifies receipts. Issue is a pure construction: it
// has no side effects beyond signing.
type Module struct {
	keystore *keystore.Keystore
}

func New(ks *keystore.Keystore) *Module {
	return &Module{keystore: ks}
}

// IssueParams is the input to Issue.
type IssueParams struct {
	MandateID        string
	Actor            types.ActorId
	Action           string
	RequestHash      string
	ResponseHash     string
	ProviderMetadata map[string]interface{}
	MirrorRef        string
}

// Issue constructs and signs a receipt under actor's key.
func (m *Module) Issue(p IssueParams) (types.Receipt, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return types.Receipt{}, fmt.Errorf("receipt: generate id: %w", err)
	}

	rc := types.Receipt{
		ReceiptID:        "receipt_" + id.String(),
		MandateID:        p.MandateID,
		Actor:            p.Actor,
		Action:           p.Action,
		RequestHash:      p.RequestHash,
		ResponseHash:     p.ResponseHash,
		ProviderMetadata: p.ProviderMetadata,
		Timestamp:        time.Now().UTC(),
		MirrorRef:        p.MirrorRef,
	}

	digest, err := signingDigest(rc)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("receipt: canonicalize: %w", err)
	}
	sig, err := m.keystore.Sign(p.Actor, []byte(digest))
	if err != nil {
		return types.Receipt{}, fmt.Errorf("receipt: sign: %w", err)
	}
	rc.Signature = sig

	return rc, nil
}

func signingDigest(rc types.Receipt) (string, error) {
	rc.Signature = ""
	return canonicalize.CanonicalHash(rc)
}

// Verify recomputes the receipt's signing digest and checks the
// signature under the actor's registered public key.
func (m *Module) Verify(rc types.Receipt) bool {
	digest, err := signingDigest(rc)
	if err != nil {
		return false
	}
	return m.keystore.Verify(rc.Actor, []byte(digest), rc.Signature)
}
