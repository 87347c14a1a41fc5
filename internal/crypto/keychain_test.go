package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIterations keeps PBKDF2 fast in unit tests.
const testIterations = 64

func newTestKeyChain() KeyChainService {
	return NewKeyChainService(WithIterations(testIterations))
}

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	svc := newTestKeyChain()

	s1, err := svc.GenerateSalt()
	require.NoError(t, err)
	s2, err := svc.GenerateSalt()
	require.NoError(t, err)

	assert.Len(t, s1, SaltSize)
	assert.Len(t, s2, SaltSize)
	assert.NotEqual(t, s1, s2)
}

func TestGenerateSalt_RandomFailure(t *testing.T) {
	svc := NewKeyChainService(WithRandom(bytes.NewReader(nil)))

	_, err := svc.GenerateSalt()
	require.Error(t, err)
}

func TestDeriveKey_DeterministicForSameInputs(t *testing.T) {
	svc := newTestKeyChain()
	salt := bytes.Repeat([]byte{0xAB}, SaltSize)

	k1 := svc.DeriveKey("1234", salt, PurposeEncryption)
	k2 := svc.DeriveKey("1234", salt, PurposeEncryption)

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
}

func TestDeriveKey_DifferentSaltProducesDifferentKey(t *testing.T) {
	svc := newTestKeyChain()

	k1 := svc.DeriveKey("1234", bytes.Repeat([]byte{0x01}, SaltSize), PurposeVerification)
	k2 := svc.DeriveKey("1234", bytes.Repeat([]byte{0x02}, SaltSize), PurposeVerification)

	assert.NotEqual(t, k1, k2)
}

func TestDeriveKey_PurposeDoesNotChangeAlgorithm(t *testing.T) {
	svc := NewKeyChainService()
	salt := bytes.Repeat([]byte{0x00}, SaltSize)

	enc := svc.DeriveKey("1234", salt, PurposeEncryption)
	ver := svc.DeriveKey("1234", salt, PurposeVerification)
	assert.Equal(t, enc, ver)
}

func TestDeriveKey_PanicsOnMalformedSalt(t *testing.T) {
	svc := newTestKeyChain()

	for _, n := range []int{0, 8, SaltSize + 1} {
		assert.Panics(t, func() {
			svc.DeriveKey("1234", make([]byte, n), PurposeEncryption)
		}, "salt length %d", n)
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	svc := newTestKeyChain()

	for _, plain := range [][]byte{{}, {1, 2, 3}, bytes.Repeat([]byte("note"), 4096)} {
		env, err := svc.Seal("1234", plain)
		require.NoError(t, err)
		assert.Len(t, env, HeaderSize+len(plain)+TagSize)

		got, err := svc.Open("1234", env)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(plain, got))
	}
}

func TestSeal_FreshSaltAndNonceEveryTime(t *testing.T) {
	svc := newTestKeyChain()
	plain := []byte("same plaintext")

	e1, err := svc.Seal("1234", plain)
	require.NoError(t, err)
	e2, err := svc.Seal("1234", plain)
	require.NoError(t, err)

	assert.NotEqual(t, e1[:SaltSize], e2[:SaltSize], "salt reused")
	assert.NotEqual(t, e1[SaltSize:HeaderSize], e2[SaltSize:HeaderSize], "nonce reused")
	assert.NotEqual(t, e1, e2)
}

func TestOpen_WrongSecret(t *testing.T) {
	svc := newTestKeyChain()

	env, err := svc.Seal("1234", []byte("secret note"))
	require.NoError(t, err)

	got, err := svc.Open("5678", env)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
	assert.NotErrorIs(t, err, ErrMalformedEnvelope)
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	svc := newTestKeyChain()

	env, err := svc.Seal("1234", []byte("secret note"))
	require.NoError(t, err)

	for _, idx := range []int{0, SaltSize, HeaderSize, len(env) - 1} {
		tampered := append([]byte(nil), env...)
		tampered[idx] ^= 0xFF

		_, err := svc.Open("1234", tampered)
		assert.ErrorIs(t, err, ErrDecryptionFailed, "byte %d", idx)
	}
}

func TestOpen_ShortEnvelope(t *testing.T) {
	svc := newTestKeyChain()

	for _, n := range []int{0, 1, HeaderSize - 1} {
		_, err := svc.Open("1234", make([]byte, n))
		assert.True(t, errors.Is(err, ErrMalformedEnvelope), "len %d", n)
	}
}

func TestOpen_HeaderOnlyIsNotMalformed(t *testing.T) {
	svc := newTestKeyChain()

	_, err := svc.Open("1234", make([]byte, HeaderSize))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestOpen_IterationCountMismatchFails(t *testing.T) {
	env, err := NewKeyChainService(WithIterations(10)).Seal("1234", []byte("x"))
	require.NoError(t, err)

	_, err = NewKeyChainService(WithIterations(11)).Open("1234", env)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual([]byte{1, 2, 3}, []byte{1, 2, 3}))
	assert.False(t, ConstantTimeEqual([]byte{1, 2, 3}, []byte{1, 2, 4}))
	assert.False(t, ConstantTimeEqual([]byte{1, 2, 3}, []byte{1, 2}))
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3}
	Zeroize(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
	Zeroize(nil)
}

func TestPurpose_String(t *testing.T) {
	assert.Equal(t, "encryption", PurposeEncryption.String())
	assert.Equal(t, "verification", PurposeVerification.String())
	assert.Equal(t, "unknown", Purpose(0).String())
}
