package store

import "errors"

// Sentinel errors returned by the storages to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCredentialNotFound is returned by CredentialStore.Get when no value
	// is stored under the requested key.
	ErrCredentialNotFound = errors.New("credential was not found")

	// ErrBlobNotFound is returned by BlobStorage.Read when the named blob
	// does not exist.
	ErrBlobNotFound = errors.New("blob was not found")

	// ErrInvalidBlobName is returned for names that are not a single path
	// element inside the storage directory.
	ErrInvalidBlobName = errors.New("invalid blob name")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")
)
