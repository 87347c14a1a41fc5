package models

// Keys of the credential key-value store.
const (
	CredentialKeyHash             = "pin_hash"
	CredentialKeySalt             = "pin_salt"
	CredentialKeyPINLength        = "pin_length"
	CredentialKeyBiometricEnabled = "biometric_enabled"

	// CredentialKeyLegacyPIN holds the plaintext PIN written by old builds.
	// Its presence triggers a one-time migration.
	CredentialKeyLegacyPIN = "pin"
)

// CredentialRecord is the verification record of the user's PIN.
//
// Hash is the KDF output of the PIN and Salt, never the PIN itself. Both are
// kept base64-encoded exactly as they are persisted.
type CredentialRecord struct {
	Hash             string
	Salt             string
	PINLength        int
	BiometricEnabled bool
}

// ReencryptReport lists the attachments processed by a bulk re-encryption.
//
// Ids in Failed could not be opened under the old PIN and stay encrypted
// under it, so they become unreadable once the new PIN is installed.
type ReencryptReport struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// HasFailures reports whether any attachment failed to re-encrypt.
func (r ReencryptReport) HasFailures() bool {
	return len(r.Failed) > 0
}

// PIN is a user-entered numeric secret. It is never persisted as is.
type PIN string

// Len returns the number of characters in the PIN.
func (p PIN) Len() int {
	return len([]rune(string(p)))
}

// PINChange carries the current and the replacement PIN of an update.
type PINChange struct {
	Old PIN
	New PIN
}
