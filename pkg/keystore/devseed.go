package keystore

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/taugate/kernel/pkg/taugate/types"
)

// SeedFixture deterministically derives Ed25519 keypairs for a fixed
// set of actors from a single master seed, using HKDF-SHA256 with each
// actor id as the info parameter. This is for tests and local dev
// fixtures that need reproducible keys across runs — production
// keys always come from EnsureKey's crypto/rand generation.
func SeedFixture(ks *Keystore, seed []byte, actors []types.ActorId) error {
	for _, actor := range actors {
		reader := hkdf.New(sha256.New, seed, nil, []byte(actor))

		seedBytes := make([]byte, ed25519.SeedSize)
		if _, err := io.ReadFull(reader, seedBytes); err != nil {
			return fmt.Errorf("keystore: derive seed for %s: %w", actor, err)
		}

		priv := ed25519.NewKeyFromSeed(seedBytes)
		id := keyIDFor(actor)

		ks.mu.Lock()
		ks.keys[id] = &keypair{public: priv.Public().(ed25519.PublicKey), private: priv}
		ks.mu.Unlock()
	}
	return nil
}
