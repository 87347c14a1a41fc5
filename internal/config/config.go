// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"path/filepath"
)

// StructuredConfig is the top-level configuration container for the note
// vault. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Vault holds the on-disk layout of the encrypted notes and attachments.
	Vault Vault `envPrefix:"VAULT_"`

	// Storage holds the credential database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Crypto holds key derivation parameters.
	Crypto Crypto `envPrefix:"CRYPTO_"`

	// Log holds the log destination and level.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Vault describes where the vault keeps its files.
type Vault struct {
	// RootDir is the directory holding the note envelope, the attachments
	// directory and, by default, the credential database.
	// Env: VAULT_ROOT_DIR
	RootDir string `env:"ROOT_DIR"`

	// NotesFile is the file name of the note envelope inside RootDir.
	// Env: VAULT_NOTES_FILE
	NotesFile string `env:"NOTES_FILE"`

	// AttachmentsDir is the attachments directory. Relative values are
	// resolved against RootDir.
	// Env: VAULT_ATTACHMENTS_DIR
	AttachmentsDir string `env:"ATTACHMENTS_DIR"`
}

// AttachmentsPath returns AttachmentsDir resolved against RootDir.
func (v Vault) AttachmentsPath() string {
	if filepath.IsAbs(v.AttachmentsDir) {
		return v.AttachmentsDir
	}
	return filepath.Join(v.RootDir, v.AttachmentsDir)
}

// Storage groups the configuration for the storage backends.
type Storage struct {
	// DB holds the credential database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the SQLite credential database.
type DB struct {
	// DSN is the path of the SQLite database file.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Crypto holds key derivation parameters.
type Crypto struct {
	// KDFIterations is the PBKDF2 iteration count, 10000 by default. The
	// count is not stored with the data: envelopes and the PIN record
	// written with one count open only with that same count, so a vault
	// created with a non-default value is locked to it. Only tests should
	// lower it. There is no flag for it; vault.New logs a warning whenever
	// it differs from the default.
	// Env: CRYPTO_KDF_ITERATIONS
	KDFIterations int `env:"KDF_ITERATIONS"`
}

// Log holds logger settings.
type Log struct {
	// File is the path of the JSON log file.
	// Env: LOG_FILE
	File string `env:"FILE"`

	// Level is a zerolog level name (debug, info, warn, error).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`
}

// GetStructuredConfig loads, merges, and validates the vault configuration
// from all available sources in the following priority order (last source
// wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags (nil flags skips this source)
//  3. JSON file (path resolved from sources 1 and 2)
//
// Unset fields are then filled with defaults. Returns a fully populated
// *StructuredConfig or an error if any source fails to load or the final
// config fails validation.
func GetStructuredConfig(flags *Flags) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flags).
		withJSON().
		build()
}
