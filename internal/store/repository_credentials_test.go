package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCredentialRepo(t *testing.T) (*credentialRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &credentialRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
		now:    func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	return repo, mock, db
}

func TestCredentialGet_Success(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM credentials WHERE key = \\?").
		WithArgs("pin_hash").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("aGFzaA=="))

	got, err := repo.Get(context.Background(), "pin_hash")
	require.NoError(t, err)
	assert.Equal(t, "aGFzaA==", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialGet_NotFound(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM credentials").
		WithArgs("pin").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := repo.Get(context.Background(), "pin")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestCredentialGet_DBError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM credentials").
		WithArgs("pin").
		WillReturnError(errors.New("disk I/O error"))

	_, err := repo.Get(context.Background(), "pin")
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.NotErrorIs(t, err, ErrCredentialNotFound)
}

func TestCredentialPut_Success(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("pin_length", "4", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Put(context.Background(), "pin_length", "4"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialPut_DBError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO credentials").
		WillReturnError(errors.New("readonly database"))

	err := repo.Put(context.Background(), "pin_length", "4")
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestCredentialPutAll_CommitsInKeyOrder(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("biometric_enabled", "false", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("pin_hash", "h", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("pin_salt", "s", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.PutAll(context.Background(), map[string]string{
		"pin_salt":          "s",
		"pin_hash":          "h",
		"biometric_enabled": "false",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialPutAll_RollsBackOnError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("pin_hash", "h", sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err := repo.PutAll(context.Background(), map[string]string{"pin_hash": "h", "pin_salt": "s"})
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialPutAll_BeginError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("busy"))

	err := repo.PutAll(context.Background(), map[string]string{"pin_hash": "h"})
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestCredentialPutAll_CommitError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO credentials").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err := repo.PutAll(context.Background(), map[string]string{"pin_hash": "h"})
	assert.ErrorIs(t, err, ErrCommitingTransaction)
}

func TestCredentialPutAll_EmptyIsNoop(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	require.NoError(t, repo.PutAll(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRemove(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM credentials WHERE key IN \\(\\?,\\?\\)").
		WithArgs("pin_hash", "pin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Remove(context.Background(), "pin_hash", "pin"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRemove_NoKeys(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	require.NoError(t, repo.Remove(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRemove_DBError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM credentials").WillReturnError(errors.New("locked"))

	err := repo.Remove(context.Background(), "pin")
	assert.ErrorIs(t, err, ErrExecutingStatement)
}
