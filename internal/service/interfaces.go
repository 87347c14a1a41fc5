package service

import (
	"context"

	"github.com/MKhiriev/go-note-vault/models"
)

// AttachmentStore encrypts binary blobs individually, one envelope file per
// opaque attachment id.
type AttachmentStore interface {
	// Save seals data under secret and writes it atomically. An empty id is
	// replaced by a freshly generated one. Returns the id the blob was stored
	// under.
	Save(ctx context.Context, secret string, data []byte, id string) (string, error)

	// Open returns the plaintext of id. It fails with ErrAttachmentNotFound
	// when no such attachment exists and with crypto.ErrDecryptionFailed when
	// the file is too short or does not authenticate under secret.
	Open(ctx context.Context, secret, id string) ([]byte, error)

	// Delete removes id. A missing attachment is not an error.
	Delete(ctx context.Context, id string) error

	// Reencrypt moves id from oldSecret to newSecret, keeping the id. When
	// the attachment cannot be opened under oldSecret it returns false and
	// leaves the file untouched.
	Reencrypt(ctx context.Context, oldSecret, newSecret, id string) (bool, error)

	// Exists reports whether id is stored.
	Exists(ctx context.Context, id string) bool

	// List returns every stored attachment id.
	List(ctx context.Context) ([]string, error)
}

// NoteVault persists the whole note collection as one encrypted envelope.
type NoteVault interface {
	// Load decrypts the note collection. A missing or truncated envelope
	// yields an empty collection. Legacy inline attachments are moved into
	// the AttachmentStore and the collection is saved again.
	Load(ctx context.Context, secret string) ([]models.Note, error)

	// Save moves inline attachments into the AttachmentStore, then seals and
	// replaces the envelope. It returns the notes as persisted.
	Save(ctx context.Context, notes []models.Note, secret string) ([]models.Note, error)

	// AttachmentIDs lists the attachment ids referenced by notes, without
	// duplicates, in first-seen order.
	AttachmentIDs(notes []models.Note) []string
}

// PinAuthority owns the PIN verification record and every operation that
// changes the secret protecting the vault.
type PinAuthority interface {
	// IsSet reports whether a current or legacy credential exists.
	IsSet(ctx context.Context) (bool, error)

	// Set installs a first PIN and removes any legacy credential.
	Set(ctx context.Context, pin string) error

	// Check compares pin against the stored credential in constant time.
	Check(ctx context.Context, pin string) (bool, error)

	// Update re-encrypts the notes and every referenced attachment from
	// oldPin to newPin, then installs the new credential. It fails with
	// ErrWrongPIN without touching anything when oldPin does not check.
	Update(ctx context.Context, oldPin, newPin string) (models.ReencryptReport, error)

	// MigrateLegacyIfNeeded converts a plaintext legacy credential into a
	// current record. The bool reports whether a migration ran.
	MigrateLegacyIfNeeded(ctx context.Context) (models.ReencryptReport, bool, error)

	// Clear removes the credential. Encrypted data is kept.
	Clear(ctx context.Context) error

	// PinLength returns the length of the current PIN, or 0 when unset.
	PinLength(ctx context.Context) (int, error)

	// SetBiometricEnabled stores the biometric unlock preference.
	SetBiometricEnabled(ctx context.Context, enabled bool) error

	// BiometricEnabled returns the biometric unlock preference.
	BiometricEnabled(ctx context.Context) (bool, error)
}

// IDGenerator produces attachment ids.
type IDGenerator interface {
	Generate() string
}
