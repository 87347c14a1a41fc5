// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package vault exposes the note vault to a host application.
//
// A Vault is constructed once per vault root. It owns the credential
// database connection and a single mutex that serializes every operation,
// so the host may call it from any goroutine. Every call is keyed from the
// PIN passed in; the Vault keeps no unlocked session.
package vault

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-note-vault/internal/config"
	"github.com/MKhiriev/go-note-vault/internal/crypto"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/MKhiriev/go-note-vault/internal/service"
	"github.com/MKhiriev/go-note-vault/internal/store"
	"github.com/MKhiriev/go-note-vault/models"
)

var (
	// ErrClosed is returned by every method called after Close.
	ErrClosed = errors.New("vault is closed")

	// ErrNotesMissing is returned by PruneAttachments when the note envelope
	// does not exist and the caller did not allow pruning without it.
	ErrNotesMissing = errors.New("note collection does not exist")

	// ErrNotesUnreadable is returned by PruneAttachments when the note
	// envelope exists but is too short to hold a collection.
	ErrNotesUnreadable = errors.New("note collection is unreadable")
)

// PruneOptions tunes PruneAttachments.
type PruneOptions struct {
	// AllowMissingNotes lets a prune run when no note envelope exists,
	// treating every stored attachment as unreferenced.
	AllowMissingNotes bool
}

// Vault is the handle the host application talks to.
type Vault struct {
	mu        sync.Mutex
	closed    bool
	storages  *store.Storages
	services  *service.Services
	notesFile string
	logger    *logger.Logger
}

// New validates cfg and opens the vault it describes: it creates the directory layout,
// opens and migrates the credential database, wires the services and runs
// the one-time legacy credential migration.
//
// A failed legacy migration is logged and does not prevent the vault from
// opening; it is retried on the next New.
func New(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*Vault, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Crypto.KDFIterations != crypto.DefaultIterations {
		log.Warn().Str("func", "vault.New").Int("iterations", cfg.Crypto.KDFIterations).
			Msg("non-default kdf iteration count: data written now opens only with the same count")
	}

	storages, err := store.NewStorages(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storages: %w", err)
	}

	keyChain := crypto.NewKeyChainService(crypto.WithIterations(cfg.Crypto.KDFIterations))

	v := &Vault{
		storages:  storages,
		services:  service.NewServices(storages, keyChain, cfg.Vault.NotesFile, log),
		notesFile: cfg.Vault.NotesFile,
		logger:    log,
	}

	ctx = log.WithContext(ctx)
	report, migrated, err := v.services.PIN.MigrateLegacyIfNeeded(ctx)
	switch {
	case err != nil:
		log.Err(err).Str("func", "vault.New").Msg("legacy credential migration failed")
	case migrated && report.HasFailures():
		log.Warn().Str("func", "vault.New").Strs("failed", report.Failed).Msg("legacy migration left attachments under the old format")
	}

	log.Info().Str("root", cfg.Vault.RootDir).Msg("vault opened")
	return v, nil
}

// lock acquires the vault mutex and returns ctx carrying the vault logger.
// The caller must call unlock.
func (v *Vault) lock(ctx context.Context) (context.Context, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ctx, ErrClosed
	}
	return v.logger.WithContext(ctx), nil
}

func (v *Vault) unlock() {
	v.mu.Unlock()
}

// LoadNotes returns the note collection decrypted with pin.
func (v *Vault) LoadNotes(ctx context.Context, pin string) ([]models.Note, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer v.unlock()

	return v.services.Notes.Load(ctx, pin)
}

// SaveNotes replaces the note collection and returns it as persisted.
func (v *Vault) SaveNotes(ctx context.Context, notes []models.Note, pin string) ([]models.Note, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer v.unlock()

	return v.services.Notes.Save(ctx, notes, pin)
}

// SaveAttachment stores data under id, or under a new id when id is empty.
func (v *Vault) SaveAttachment(ctx context.Context, pin string, data []byte, id string) (string, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return "", err
	}
	defer v.unlock()

	return v.services.Attachments.Save(ctx, pin, data, id)
}

func (v *Vault) OpenAttachment(ctx context.Context, pin, id string) ([]byte, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer v.unlock()

	return v.services.Attachments.Open(ctx, pin, id)
}

func (v *Vault) DeleteAttachment(ctx context.Context, id string) error {
	ctx, err := v.lock(ctx)
	if err != nil {
		return err
	}
	defer v.unlock()

	return v.services.Attachments.Delete(ctx, id)
}

func (v *Vault) ReencryptAttachment(ctx context.Context, oldPin, newPin, id string) (bool, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return false, err
	}
	defer v.unlock()

	return v.services.Attachments.Reencrypt(ctx, oldPin, newPin, id)
}

func (v *Vault) IsPINSet(ctx context.Context) (bool, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return false, err
	}
	defer v.unlock()

	return v.services.PIN.IsSet(ctx)
}

// SetPIN installs the first PIN. It fails with service.ErrPINAlreadySet when
// a PIN exists; use UpdatePIN to change it.
func (v *Vault) SetPIN(ctx context.Context, pin string) error {
	ctx, err := v.lock(ctx)
	if err != nil {
		return err
	}
	defer v.unlock()

	set, err := v.services.PIN.IsSet(ctx)
	if err != nil {
		return err
	}
	if set {
		return service.ErrPINAlreadySet
	}
	return v.services.PIN.Set(ctx, pin)
}

func (v *Vault) CheckPIN(ctx context.Context, pin string) (bool, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return false, err
	}
	defer v.unlock()

	return v.services.PIN.Check(ctx, pin)
}

// UpdatePIN re-encrypts everything from oldPin to newPin. Attachments listed
// in the report's Failed stay under oldPin.
func (v *Vault) UpdatePIN(ctx context.Context, oldPin, newPin string) (models.ReencryptReport, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return models.ReencryptReport{}, err
	}
	defer v.unlock()

	return v.services.PIN.Update(ctx, oldPin, newPin)
}

// ClearPIN removes the credential. Notes and attachments stay encrypted.
func (v *Vault) ClearPIN(ctx context.Context) error {
	ctx, err := v.lock(ctx)
	if err != nil {
		return err
	}
	defer v.unlock()

	return v.services.PIN.Clear(ctx)
}

func (v *Vault) PinLength(ctx context.Context) (int, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer v.unlock()

	return v.services.PIN.PinLength(ctx)
}

func (v *Vault) SetBiometricEnabled(ctx context.Context, enabled bool) error {
	ctx, err := v.lock(ctx)
	if err != nil {
		return err
	}
	defer v.unlock()

	return v.services.PIN.SetBiometricEnabled(ctx, enabled)
}

func (v *Vault) BiometricEnabled(ctx context.Context) (bool, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return false, err
	}
	defer v.unlock()

	return v.services.PIN.BiometricEnabled(ctx)
}

// PruneAttachments deletes every stored attachment that no note references
// and returns the removed ids. pin must be the current PIN.
//
// A truncated note envelope fails with ErrNotesUnreadable and a missing one
// with ErrNotesMissing unless opts.AllowMissingNotes is set. In both cases
// nothing is removed.
func (v *Vault) PruneAttachments(ctx context.Context, pin string, opts PruneOptions) ([]string, error) {
	ctx, err := v.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer v.unlock()

	log := logger.FromContext(ctx)

	set, err := v.services.PIN.IsSet(ctx)
	if err != nil {
		return nil, err
	}
	if !set {
		return nil, service.ErrPINNotSet
	}
	ok, err := v.services.PIN.Check(ctx, pin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, service.ErrWrongPIN
	}

	envelope, err := v.storages.Notes.Read(ctx, v.notesFile)
	switch {
	case errors.Is(err, store.ErrBlobNotFound):
		if !opts.AllowMissingNotes {
			return nil, ErrNotesMissing
		}
		log.Warn().Str("func", "*Vault.PruneAttachments").Msg("no note envelope, pruning every attachment")
	case err != nil:
		return nil, fmt.Errorf("read notes: %w", err)
	case len(envelope) < crypto.HeaderSize:
		return nil, fmt.Errorf("%w: %w", ErrNotesUnreadable, crypto.ErrMalformedEnvelope)
	}

	notes, err := v.services.Notes.Load(ctx, pin)
	if err != nil {
		return nil, err
	}
	referenced := v.services.Notes.AttachmentIDs(notes)

	stored, err := v.services.Attachments.List(ctx)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0)
	for _, id := range stored {
		if slices.Contains(referenced, id) {
			continue
		}
		if err = v.services.Attachments.Delete(ctx, id); err != nil {
			return removed, err
		}
		removed = append(removed, id)
	}

	log.Info().Str("func", "*Vault.PruneAttachments").Int("count", len(removed)).Msg("orphan attachments pruned")
	return removed, nil
}

// Close releases the credential database. Further calls return ErrClosed.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true
	return v.storages.Close()
}
