// Package keystore manages per-actor Ed25519 signing keys. It is the
// kernel's sole source of truth for "who signed this" — mandates,
// events and receipts are all signed and verified through it.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/taugate/kernel/pkg/taugate/errs"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// KeyID is the stable identifier for an actor's active signing key,
// of the form "ed25519:<actor_id>".
type KeyID string

func keyIDFor(actor types.ActorId) KeyID {
	return KeyID(fmt.Sprintf("ed25519:%s", actor))
}

type keypair struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// Keystore holds Ed25519 keypairs for every actor the kernel has seen.
// Safe for concurrent use: callers running multi-threaded still owe the
// kernel-level exclusive lock described by the concurrency model, but
// the keystore's own bookkeeping never corrupts under concurrent access.
type Keystore struct {
	mu   sync.RWMutex
	keys map[KeyID]*keypair
}

// New creates an empty keystore.
func New() *Keystore {
	return &Keystore{keys: make(map[KeyID]*keypair)}
}

// EnsureKey returns the actor's key id, generating a fresh Ed25519
// keypair the first time it is asked about this actor. Idempotent.
func (k *Keystore) EnsureKey(actor types.ActorId) (KeyID, error) {
	id := keyIDFor(actor)

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.keys[id]; ok {
		return id, nil
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("keystore: generate key for %s: %w", actor, err)
	}
	k.keys[id] = &keypair{public: pub, private: priv}
	return id, nil
}

// ImportPublicKey registers a public key for verification-only use
// (e.g. a remote actor whose private key never touches this process).
func (k *Keystore) ImportPublicKey(actor types.ActorId, pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("keystore: invalid public key size %d for %s", len(pub), actor)
	}
	id := keyIDFor(actor)
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[id] = &keypair{public: pub}
	return nil
}

// Sign produces a lowercase-hex Ed25519 signature over digest using the
// actor's private key. Returns ErrMissingPrivateKey if the actor has no
// registered private key (e.g. it was imported public-only).
func (k *Keystore) Sign(actor types.ActorId, digest []byte) (string, error) {
	id := keyIDFor(actor)

	k.mu.RLock()
	kp, ok := k.keys[id]
	k.mu.RUnlock()

	if !ok || kp.private == nil {
		return "", errs.ErrMissingPrivateKey
	}
	sig := ed25519.Sign(kp.private, digest)
	return hex.EncodeToString(sig), nil
}

// Verify checks a hex-encoded Ed25519 signature over digest for actor.
// It never panics: malformed signatures or unknown actors return false.
func (k *Keystore) Verify(actor types.ActorId, digest []byte, signatureHex string) bool {
	id := keyIDFor(actor)

	k.mu.RLock()
	kp, ok := k.keys[id]
	k.mu.RUnlock()
	if !ok {
		return false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(kp.public, digest, sig)
}

// PublicKey returns the actor's public key, if known.
func (k *Keystore) PublicKey(actor types.ActorId) (ed25519.PublicKey, bool) {
	id := keyIDFor(actor)
	k.mu.RLock()
	defer k.mu.RUnlock()
	kp, ok := k.keys[id]
	if !ok {
		return nil, false
	}
	return kp.public, true
}
