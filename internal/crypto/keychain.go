// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto implements the key derivation and the salt‖iv‖ciphertext
// envelope shared by attachments and the note collection.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of every salt: credential and per-envelope.
	SaltSize = 16
	// NonceSize is the AES-GCM IV length.
	NonceSize = 12
	// KeySize selects AES-256.
	KeySize = 32
	// TagSize is the GCM authentication tag length.
	TagSize = 16
	// HeaderSize is the number of bytes preceding the ciphertext.
	HeaderSize = SaltSize + NonceSize

	// DefaultIterations is the PBKDF2 iteration count written by every build.
	DefaultIterations = 10_000
)

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	iterations int
	random     io.Reader
}

// Option tunes a [KeyChainService].
type Option func(*keyChainService)

// WithIterations overrides the PBKDF2 iteration count. Values below 1 are
// ignored. Only tests should lower it: envelopes sealed with a different
// count cannot be opened by a default key chain.
func WithIterations(n int) Option {
	return func(k *keyChainService) {
		if n > 0 {
			k.iterations = n
		}
	}
}

// WithRandom replaces the CSPRNG used for salts and IVs.
func WithRandom(r io.Reader) Option {
	return func(k *keyChainService) {
		if r != nil {
			k.random = r
		}
	}
}

// NewKeyChainService constructs a [KeyChainService] with PBKDF2-HMAC-SHA256,
// DefaultIterations rounds and a 256-bit output.
func NewKeyChainService(opts ...Option) KeyChainService {
	k := &keyChainService{
		iterations: DefaultIterations,
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// GenerateSalt implements [KeyChainService].
func (k *keyChainService) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(k.random, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey implements [KeyChainService].
func (k *keyChainService) DeriveKey(secret string, salt []byte, purpose Purpose) []byte {
	if len(salt) != SaltSize {
		panic(fmt.Sprintf("crypto: %s salt must be %d bytes, got %d", purpose, SaltSize, len(salt)))
	}
	return pbkdf2.Key([]byte(secret), salt, k.iterations, KeySize, sha256.New)
}

// Seal implements [KeyChainService]. The returned blob is
// salt ‖ nonce ‖ ciphertext, where ciphertext carries the GCM tag.
func (k *keyChainService) Seal(secret string, plaintext []byte) ([]byte, error) {
	salt, err := k.GenerateSalt()
	if err != nil {
		return nil, err
	}

	key := k.DeriveKey(secret, salt, PurposeEncryption)
	defer Zeroize(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(k.random, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, HeaderSize+len(plaintext)+TagSize)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open implements [KeyChainService].
func (k *keyChainService) Open(secret string, envelope []byte) ([]byte, error) {
	if len(envelope) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedEnvelope, len(envelope), HeaderSize)
	}

	salt := envelope[:SaltSize]
	nonce := envelope[SaltSize:HeaderSize]
	ciphertext := envelope[HeaderSize:]

	key := k.DeriveKey(secret, salt, PurposeEncryption)
	defer Zeroize(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// ConstantTimeEqual compares a and b in time that depends only on their
// lengths, never on the position of the first mismatch.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zeroize overwrites b with zeros.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
