package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MKhiriev/go-note-vault/internal/logger"
)

// tempPrefix marks in-flight writes. Blob names never start with a dot, so
// List can skip leftovers of an interrupted write.
const tempPrefix = ".tmp-"

// blobFileStorage is the local filesystem implementation of [BlobStorage].
// Every blob is one regular file directly under dir.
type blobFileStorage struct {
	dir    string
	logger *logger.Logger
}

// NewBlobFileStorage creates dir (mode 0700) if needed and returns a
// [BlobStorage] rooted at it.
func NewBlobFileStorage(dir string, logger *logger.Logger) (BlobStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	logger.Debug().Str("dir", dir).Msg("creating blob file storage")
	return &blobFileStorage{
		dir:    dir,
		logger: logger,
	}, nil
}

// ValidBlobName reports whether name is a single path element that can be
// stored as is.
func ValidBlobName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}

func (b *blobFileStorage) path(name string) (string, error) {
	if !ValidBlobName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBlobName, name)
	}
	return filepath.Join(b.dir, name), nil
}

// Read returns the whole blob, or ErrBlobNotFound.
func (b *blobFileStorage) Read(ctx context.Context, name string) ([]byte, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*blobFileStorage.Read").Str("name", name).Msg("failed to read blob")
		return nil, fmt.Errorf("failed to read blob %q: %w", name, err)
	}

	return data, nil
}

// Write stores data via a temp file in the same directory that is synced
// and then renamed over the target.
func (b *blobFileStorage) Write(ctx context.Context, name string, data []byte) (err error) {
	log := logger.FromContext(ctx)

	p, err := b.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, tempPrefix+name+"-*")
	if err != nil {
		log.Err(err).Str("func", "*blobFileStorage.Write").Str("name", name).Msg("failed to create temp file")
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write blob %q: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync blob %q: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close blob %q: %w", name, err)
	}
	if err = os.Rename(tmpName, p); err != nil {
		log.Err(err).Str("func", "*blobFileStorage.Write").Str("name", name).Msg("failed to replace blob")
		return fmt.Errorf("failed to replace blob %q: %w", name, err)
	}

	log.Debug().Str("func", "*blobFileStorage.Write").Str("name", name).Int("size", len(data)).Msg("blob stored")
	return nil
}

// Remove deletes the blob. A missing blob is not an error.
func (b *blobFileStorage) Remove(ctx context.Context, name string) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}

	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.FromContext(ctx).Err(err).Str("func", "*blobFileStorage.Remove").Str("name", name).Msg("failed to remove blob")
		return fmt.Errorf("failed to remove blob %q: %w", name, err)
	}

	return nil
}

// Exists reports whether a regular file named name is stored.
func (b *blobFileStorage) Exists(_ context.Context, name string) bool {
	p, err := b.path(name)
	if err != nil {
		return false
	}

	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// List returns the names of all stored blobs, skipping directories and
// temp files.
func (b *blobFileStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*blobFileStorage.List").Msg("failed to list blobs")
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !ValidBlobName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	return names, nil
}
