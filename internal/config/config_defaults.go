package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default values used when no source sets a field.
const (
	DefaultRootDirName    = ".notevault"
	DefaultNotesFile      = "notes.enc"
	DefaultAttachmentsDir = "attachments"
	DefaultDBFile         = "credentials.db"
	DefaultLogFile        = "notevault.log"
	DefaultKDFIterations  = 10_000
	DefaultLogLevel       = "info"
)

// userHomeDir is replaced in tests.
var userHomeDir = os.UserHomeDir

// applyDefaults fills every unset field. Paths derived from the root are
// computed after the root itself is known.
func (cfg *StructuredConfig) applyDefaults() error {
	if cfg.Vault.RootDir == "" {
		home, err := userHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Vault.RootDir = filepath.Join(home, DefaultRootDirName)
	}
	if cfg.Vault.NotesFile == "" {
		cfg.Vault.NotesFile = DefaultNotesFile
	}
	if cfg.Vault.AttachmentsDir == "" {
		cfg.Vault.AttachmentsDir = DefaultAttachmentsDir
	}
	if cfg.Storage.DB.DSN == "" {
		cfg.Storage.DB.DSN = filepath.Join(cfg.Vault.RootDir, DefaultDBFile)
	}
	if cfg.Crypto.KDFIterations == 0 {
		cfg.Crypto.KDFIterations = DefaultKDFIterations
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.Vault.RootDir, DefaultLogFile)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	return nil
}
