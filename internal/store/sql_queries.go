package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

const credentialsTable = "credentials"

// sqlite is the statement builder for the credential database.
var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildGetCredentialQuery(key string) (string, []any, error) {
	return sqlite.
		Select("value").
		From(credentialsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
}

func buildPutCredentialQuery(key, value string, now time.Time) (string, []any, error) {
	return sqlite.
		Insert(credentialsTable).
		Columns("key", "value", "updated_at").
		Values(key, value, now).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
}

func buildRemoveCredentialsQuery(keys ...string) (string, []any, error) {
	return sqlite.
		Delete(credentialsTable).
		Where(sq.Eq{"key": keys}).
		ToSql()
}
