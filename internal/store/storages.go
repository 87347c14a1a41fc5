package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-vault/internal/config"
	"github.com/MKhiriev/go-note-vault/internal/logger"
)

// Storages groups every storage the vault services need into a single value
// that can be passed around the service layer.
type Storages struct {
	// Credentials is the SQLite-backed store of the PIN verification record.
	Credentials CredentialStore
	// Notes is rooted at the vault root and holds the note envelope.
	Notes BlobStorage
	// Attachments holds one envelope file per attachment id.
	Attachments BlobStorage

	db *DB
}

// NewStorages initialises the storage layer using the supplied configuration
// and logger. It performs the following steps:
//  1. Creates the vault root and the attachments directory.
//  2. Opens an SQLite connection to cfg.Storage.DB.DSN, creating the
//     database file if it does not yet exist.
//  3. Runs pending schema migrations via [DB.Migrate].
//
// Returns an error if any directory cannot be created, the database
// connection cannot be established or migration fails.
func NewStorages(ctx context.Context, cfg *config.StructuredConfig, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	notes, err := NewBlobFileStorage(cfg.Vault.RootDir, logger)
	if err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}

	attachments, err := NewBlobFileStorage(cfg.Vault.AttachmentsPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("attachments: %w", err)
	}

	db, err := NewConnectSQLite(ctx, cfg.Storage.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Credentials: NewCredentialRepository(db, logger),
		Notes:       notes,
		Attachments: attachments,
		db:          db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
