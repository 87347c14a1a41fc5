package store

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CredentialStore is a small key-value store for the PIN verification record.
// Values are opaque strings; the caller owns their encoding.
type CredentialStore interface {
	// Get returns the value stored under key, or ErrCredentialNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Put inserts or replaces the value stored under key.
	Put(ctx context.Context, key, value string) error
	// PutAll writes every pair in one transaction.
	PutAll(ctx context.Context, values map[string]string) error
	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

// BlobStorage keeps named binary blobs in a single flat directory.
type BlobStorage interface {
	// Read returns the whole blob, or ErrBlobNotFound.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the blob atomically: readers observe either the old or
	// the new content, never a partial file.
	Write(ctx context.Context, name string, data []byte) error
	// Remove deletes the blob. A missing blob is not an error.
	Remove(ctx context.Context, name string) error
	// Exists reports whether a blob with the given name is stored.
	Exists(ctx context.Context, name string) bool
	// List returns the names of all stored blobs in lexical order.
	List(ctx context.Context) ([]string, error)
}
