package keystore

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
)

// ed25519Multicodec is the multicodec prefix (0xED, 0x01) for an
// Ed25519 public key, per the did:key method.
var ed25519Multicodec = []byte{0xED, 0x01}

// EncodeDIDKey renders an Ed25519 public key as a did:key identifier:
// "did:key:z" + base64url(multicodec-prefix || pubkey).
func EncodeDIDKey(pub ed25519.PublicKey) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", errors.New("keystore: invalid ed25519 public key length")
	}
	buf := make([]byte, 0, len(ed25519Multicodec)+len(pub))
	buf = append(buf, ed25519Multicodec...)
	buf = append(buf, pub...)
	return "did:key:z" + base64.RawURLEncoding.EncodeToString(buf), nil
}

// DecodeDIDKey parses a did:key identifier back into an Ed25519 public key.
func DecodeDIDKey(did string) (ed25519.PublicKey, error) {
	const prefix = "did:key:z"
	if len(did) <= len(prefix) || did[:len(prefix)] != prefix {
		return nil, errors.New("keystore: not a did:key identifier")
	}
	buf, err := base64.RawURLEncoding.DecodeString(did[len(prefix):])
	if err != nil {
		return nil, err
	}
	if len(buf) != len(ed25519Multicodec)+ed25519.PublicKeySize {
		return nil, errors.New("keystore: unexpected did:key payload length")
	}
	if buf[0] != ed25519Multicodec[0] || buf[1] != ed25519Multicodec[1] {
		return nil, errors.New("keystore: unsupported did:key multicodec")
	}
	return ed25519.PublicKey(buf[len(ed25519Multicodec):]), nil
}
