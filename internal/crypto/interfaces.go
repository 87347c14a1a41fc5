package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_mock.go -package=mock

// Purpose tells which downstream use a derived key is meant for.
//
// Both purposes run the same KDF. They never share a salt: the credential
// salt and every per-record envelope salt are generated independently.
type Purpose int

const (
	// PurposeEncryption derives the AEAD key of one envelope from the PIN and
	// that envelope's salt.
	PurposeEncryption Purpose = iota + 1
	// PurposeVerification derives the stored PIN verification hash from the
	// PIN and the credential salt.
	PurposeVerification
)

// String returns a log-friendly name of the purpose.
func (p Purpose) String() string {
	switch p {
	case PurposeEncryption:
		return "encryption"
	case PurposeVerification:
		return "verification"
	default:
		return "unknown"
	}
}

// KeyChainService owns every cryptographic primitive of the vault.
// It knows nothing about files, notes or credentials.
//
// Envelope layout:
//
//	salt (16) ‖ iv (12) ‖ AES-256-GCM ciphertext ‖ tag (16)
type KeyChainService interface {
	// GenerateSalt reads SaltSize random bytes from the OS CSPRNG.
	GenerateSalt() ([]byte, error)

	// DeriveKey runs PBKDF2-HMAC-SHA256 over secret and salt and returns a
	// 256-bit key. A salt that is not SaltSize bytes long is a programmer
	// error and panics.
	DeriveKey(secret string, salt []byte, purpose Purpose) []byte

	// Seal encrypts plaintext under a key derived from secret and a fresh
	// salt, using a fresh IV, and returns the envelope bytes.
	Seal(secret string, plaintext []byte) ([]byte, error)

	// Open reverses Seal. It returns ErrMalformedEnvelope when the input is
	// shorter than the header and ErrDecryptionFailed when authentication
	// fails (wrong secret or corrupted bytes).
	Open(secret string, envelope []byte) ([]byte, error)
}
