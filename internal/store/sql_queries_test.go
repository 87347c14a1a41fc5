// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildGetCredentialQuery(t *testing.T) {
	query, args, err := buildGetCredentialQuery("pin_hash")
	require.NoError(t, err)

	assert.Equal(t, "SELECT value FROM credentials WHERE key = ?", query)
	assert.Equal(t, []any{"pin_hash"}, args)
}

func Test_buildPutCredentialQuery_Upserts(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	query, args, err := buildPutCredentialQuery("pin_salt", "c2FsdA==", now)
	require.NoError(t, err)

	q := strings.ToLower(query)
	require.Contains(t, q, "insert into credentials")
	require.Contains(t, q, "on conflict(key) do update")
	require.Contains(t, q, "excluded.value")
	// placeholder format should be ? (SQLite)
	assert.NotContains(t, query, "$1")
	assert.Equal(t, 3, strings.Count(query, "?"))

	assert.Equal(t, []any{"pin_salt", "c2FsdA==", now}, args)
}

func Test_buildRemoveCredentialsQuery(t *testing.T) {
	t.Run("single key", func(t *testing.T) {
		query, args, err := buildRemoveCredentialsQuery("pin")
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM credentials WHERE key IN (?)", query)
		assert.Equal(t, []any{"pin"}, args)
	})

	t.Run("several keys", func(t *testing.T) {
		query, args, err := buildRemoveCredentialsQuery("pin_hash", "pin_salt", "pin")
		require.NoError(t, err)
		// squirrel generates IN (?,?,?) for a slice.
		assert.Equal(t, "DELETE FROM credentials WHERE key IN (?,?,?)", query)
		assert.Len(t, args, 3)
	})
}
