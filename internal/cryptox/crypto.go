// Package cryptox implements password-based key derivation and authenticated
// encryption of opaque blobs for the local credential store.
//
// Keys are derived with Argon2id and blobs are sealed with AES-256-GCM. Every
// call to Encrypt draws a fresh 12-byte nonce, which travels in front of the
// ciphertext:
//
//	base64( nonce[12] || ciphertext || tag[16] )
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32

	// NonceSize is the GCM nonce size in bytes.
	NonceSize = 12

	// SaltSize is the size of a freshly generated salt in bytes.
	SaltSize = 16

	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	ErrKeyDerivation        = errors.New("key derivation failed")
	ErrInvalidKeyLength     = errors.New("key must be 32 bytes")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// DeriveKey derives a 32-byte key from password and salt using Argon2id.
// The result is deterministic for identical inputs.
func DeriveKey(password []byte, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", ErrKeyDerivation)
	}
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeySize), nil
}

// GenerateSalt returns SaltSize random bytes from the OS CSPRNG.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with key and returns the base64 encoded
// nonce || ciphertext.
func Encrypt(plaintext []byte, key []byte) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Malformed, truncated or tampered blobs, as well
// as blobs sealed under a different key, fail with ErrAuthenticationFailed.
func Decrypt(blob string, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.Strict().DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrAuthenticationFailed, err)
	}
	if len(raw) < NonceSize {
		return nil, fmt.Errorf("%w: blob too short", ErrAuthenticationFailed)
	}

	nonce, ciphertext := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Wipe overwrites b with zeros. It is safe to call with nil.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
