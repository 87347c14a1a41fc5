package crypto

import "errors"

var (
	// ErrMalformedEnvelope is returned when an envelope is shorter than its
	// salt and IV header, so it cannot hold any usable data.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrDecryptionFailed is returned when AEAD verification fails. The
	// secret is wrong or the ciphertext has been altered.
	ErrDecryptionFailed = errors.New("decryption failed")
)
