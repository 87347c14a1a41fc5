// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup. [GetStructuredConfig] calls it;
// code that assembles a config by hand should call it too.
//
// Returns nil if the configuration is valid, or one of the ErrInvalid*
// errors wrapped with the offending field otherwise.
func (cfg *StructuredConfig) Validate() error {
	if cfg.Vault.RootDir == "" {
		return fmt.Errorf("%w: empty root dir", ErrInvalidVaultConfigs)
	}
	if name := cfg.Vault.NotesFile; name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: notes file must be a plain file name, got %q", ErrInvalidVaultConfigs, name)
	}
	if cfg.Vault.AttachmentsDir == "" {
		return fmt.Errorf("%w: empty attachments dir", ErrInvalidVaultConfigs)
	}
	if err := cfg.validateAttachmentsDir(); err != nil {
		return err
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return fmt.Errorf("%w: credential database must be a file", ErrInvalidStorageConfigs)
	}

	if cfg.Crypto.KDFIterations < 1 {
		return fmt.Errorf("%w: kdf iterations must be positive, got %d", ErrInvalidCryptoConfigs, cfg.Crypto.KDFIterations)
	}

	return nil
}

// validateAttachmentsDir rejects an attachments directory that would hold
// any other vault file. Every regular file in that directory is treated as
// an attachment, so pruning would delete the note envelope or the
// credential database.
func (cfg *StructuredConfig) validateAttachmentsDir() error {
	attachments := absPath(cfg.Vault.AttachmentsPath())
	root := absPath(cfg.Vault.RootDir)

	if attachments == root {
		return fmt.Errorf("%w: attachments dir %q is the vault root", ErrInvalidVaultConfigs, cfg.Vault.AttachmentsDir)
	}

	owned := map[string]string{
		"notes file":          filepath.Join(root, cfg.Vault.NotesFile),
		"credential database": absPath(cfg.Storage.DB.DSN),
	}
	if cfg.Log.File != "" {
		owned["log file"] = absPath(cfg.Log.File)
	}
	for what, path := range owned {
		if isWithin(attachments, path) {
			return fmt.Errorf("%w: attachments dir %q contains the %s", ErrInvalidVaultConfigs, cfg.Vault.AttachmentsDir, what)
		}
	}

	return nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// isWithin reports whether path is dir itself or lies below it.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
