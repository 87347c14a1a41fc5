// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the user-facing messages shared by the note vault
// command line.
//
// All Msg* constants are human-readable strings printed to the terminal to
// describe the outcome of an operation. Keeping them in one place ensures
// consistent wording across commands. Message maps an error returned by the
// vault to one of them.
package app

import (
	"errors"

	"github.com/MKhiriev/go-note-vault/internal/config"
	"github.com/MKhiriev/go-note-vault/internal/crypto"
	"github.com/MKhiriev/go-note-vault/internal/service"
	"github.com/MKhiriev/go-note-vault/internal/validators"
	"github.com/MKhiriev/go-note-vault/internal/vault"
)

const (
	// MsgWrongPIN is printed when the entered PIN does not match the stored
	// credential.
	MsgWrongPIN = "wrong PIN"

	// MsgPINNotSet is printed when a command needs a PIN but none has been
	// set yet.
	MsgPINNotSet = "no PIN is set, run `notevault pin set` first"

	// MsgPINAlreadySet is printed by `pin set` when a PIN exists.
	MsgPINAlreadySet = "a PIN is already set, use `notevault pin change`"

	// MsgInvalidPIN is printed when a new PIN fails validation.
	MsgInvalidPIN = "a PIN must be 4 to 16 digits"

	// MsgPINMismatch is printed when the PIN confirmation differs.
	MsgPINMismatch = "PINs do not match"

	// MsgDecryptionFailed is printed when stored data cannot be decrypted
	// with the entered PIN, or has been damaged.
	MsgDecryptionFailed = "data cannot be decrypted with this PIN or is damaged"

	// MsgAttachmentNotFound is printed when an attachment id is unknown.
	MsgAttachmentNotFound = "attachment not found"

	// MsgInvalidAttachmentID is printed when an attachment id is not a
	// plain file name.
	MsgInvalidAttachmentID = "invalid attachment id"

	// MsgNoteNotFound is printed when a note id is unknown.
	MsgNoteNotFound = "note not found"

	// MsgCorruptNotes is printed when the note collection decrypts but
	// cannot be parsed.
	MsgCorruptNotes = "note collection is damaged or was written by a newer version"

	// MsgNotesMissing is printed by `prune` when no note collection exists.
	MsgNotesMissing = "no note collection found, nothing was removed (use --allow-missing-notes to prune anyway)"

	// MsgNotesUnreadable is printed by `prune` when the note collection file
	// is damaged.
	MsgNotesUnreadable = "note collection file is damaged, nothing was removed"

	// MsgCorruptCredential is printed when the stored credential cannot be
	// read back.
	MsgCorruptCredential = "stored PIN record is damaged"

	// MsgInvalidConfig is printed when the configuration fails validation.
	MsgInvalidConfig = "invalid configuration"

	// MsgVaultClosed is printed when the vault was used after closing.
	MsgVaultClosed = "vault is closed"

	// MsgInvalidUsage prefixes command line parsing errors.
	MsgInvalidUsage = "invalid usage"

	// MsgInternalError is printed for every other failure. Details are in
	// the log file.
	MsgInternalError = "internal error, see the log file for details"
)

// ErrNoteNotFound is returned by note commands for an unknown note id.
var ErrNoteNotFound = errors.New(MsgNoteNotFound)

// ErrPINMismatch is returned when a PIN confirmation differs.
var ErrPINMismatch = errors.New(MsgPINMismatch)

// ErrUsage wraps errors raised while parsing the command line, before any
// command ran.
var ErrUsage = errors.New(MsgInvalidUsage)

// Message returns the user-facing message for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUsage):
		return err.Error()
	case errors.Is(err, service.ErrWrongPIN):
		return MsgWrongPIN
	case errors.Is(err, service.ErrPINNotSet):
		return MsgPINNotSet
	case errors.Is(err, service.ErrPINAlreadySet):
		return MsgPINAlreadySet
	case errors.Is(err, validators.ErrEmptyPIN),
		errors.Is(err, validators.ErrPINNotNumeric),
		errors.Is(err, validators.ErrPINLength):
		return MsgInvalidPIN
	case errors.Is(err, ErrPINMismatch):
		return MsgPINMismatch
	case errors.Is(err, vault.ErrNotesMissing):
		return MsgNotesMissing
	case errors.Is(err, vault.ErrNotesUnreadable):
		return MsgNotesUnreadable
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return MsgDecryptionFailed
	case errors.Is(err, service.ErrAttachmentNotFound):
		return MsgAttachmentNotFound
	case errors.Is(err, service.ErrInvalidAttachmentID):
		return MsgInvalidAttachmentID
	case errors.Is(err, ErrNoteNotFound):
		return MsgNoteNotFound
	case errors.Is(err, service.ErrSerialization):
		return MsgCorruptNotes
	case errors.Is(err, service.ErrCorruptRecord):
		return MsgCorruptCredential
	case errors.Is(err, config.ErrInvalidVaultConfigs),
		errors.Is(err, config.ErrInvalidStorageConfigs),
		errors.Is(err, config.ErrInvalidCryptoConfigs):
		return MsgInvalidConfig + ": " + err.Error()
	case errors.Is(err, vault.ErrClosed):
		return MsgVaultClosed
	default:
		return MsgInternalError
	}
}
