package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-note-vault/internal/logger"
)

// credentialRepository is the SQLite-backed implementation of
// [CredentialStore]. Each key is one row of the "credentials" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext]. Values
// are never logged: they include the PIN verification hash and, for legacy
// records, the plaintext PIN.
type credentialRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

// NewCredentialRepository constructs a [CredentialStore] backed by the
// provided database connection and logger.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialStore {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		DB:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the value stored under key.
//
// Error handling:
//   - no row → [ErrCredentialNotFound].
//   - query build failure → [ErrBuildingSQLQuery].
//   - any other driver-level error → wrapped [ErrExecutingQuery].
func (r *credentialRepository) Get(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetCredentialQuery(key)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Get").Msg("error building query")
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value string
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", ErrCredentialNotFound
	case err != nil:
		log.Err(err).Str("func", "*credentialRepository.Get").Str("key", key).Msg("error reading credential")
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return value, nil
}

// Put inserts or replaces the value stored under key.
func (r *credentialRepository) Put(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildPutCredentialQuery(key, value, r.now())
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Put").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*credentialRepository.Put").Str("key", key).Msg("error writing credential")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// PutAll upserts every pair inside one transaction, so a crash never leaves
// a hash next to a salt from a different record. Keys are written in
// lexical order.
func (r *credentialRepository) PutAll(ctx context.Context, values map[string]string) error {
	log := logger.FromContext(ctx)

	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.PutAll").Msg("error beginning transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	now := r.now()
	for _, key := range keys {
		query, args, err := buildPutCredentialQuery(key, values[key], now)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Str("func", "*credentialRepository.PutAll").Str("key", key).Msg("error writing credential")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*credentialRepository.PutAll").Msg("error committing transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

// Remove deletes the given keys in a single statement.
func (r *credentialRepository) Remove(ctx context.Context, keys ...string) error {
	log := logger.FromContext(ctx)

	if len(keys) == 0 {
		return nil
	}

	query, args, err := buildRemoveCredentialsQuery(keys...)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Remove").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Remove").Strs("keys", keys).Msg("error removing credentials")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, err := res.RowsAffected(); err == nil {
		log.Debug().Str("func", "*credentialRepository.Remove").Int64("count", n).Msg("credentials removed")
	}

	return nil
}
