package store

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealer seals and opens secret-tainted values before/after they touch the
// store. Grounded on the teacher's internal/db.Encryptor dual-algorithm
// design; simplified to the single XChaCha20-Poly1305 algorithm since
// nothing in this port's threat model calls for the teacher's AES-GCM
// fallback or its key-rotation/keyring machinery — one master key, derived
// per field path via HKDF, is sufficient for an optional warm-start cache.
type sealer struct {
	masterKey []byte
}

func newSealer(masterKey []byte) *sealer {
	return &sealer{masterKey: masterKey}
}

func (s *sealer) deriveKey(fieldPath string) ([]byte, error) {
	kdf := hkdf.New(sha256.New, s.masterKey, []byte("kimchi-store"), []byte(fieldPath))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under a key derived from fieldPath, returning the
// nonce and ciphertext to store separately.
func (s *sealer) Seal(fieldPath string, plaintext []byte) (nonce, ciphertext []byte, err error) {
	key, err := s.deriveKey(fieldPath)
	if err != nil {
		return nil, nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return nonce, aead.Seal(nil, nonce, plaintext, []byte(fieldPath)), nil
}

// Open reverses Seal.
func (s *sealer) Open(fieldPath string, nonce, ciphertext []byte) ([]byte, error) {
	key, err := s.deriveKey(fieldPath)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, []byte(fieldPath))
}
