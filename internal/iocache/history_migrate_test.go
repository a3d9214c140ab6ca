package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/ghsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateHistory_NoneBackend(t *testing.T) {
	err := MigrateHistory(&bytes.Buffer{}, schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")
	var out bytes.Buffer

	// Run migration to latest version
	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 3")

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Run migration again (should be a no-op)
	out.Reset()
	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "No migration needed")

	// Step down to a specific version
	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, dbPath, 1))

	// Roll back everything
	out.Reset()
	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, dbPath, 0))
	assert.Contains(t, out.String(), "rolled back")

	// Migrate back up
	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, dbPath, 2))
}

func TestMigrateHistory_StoreTablesAreCompatible(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Tables created by the store must not conflict with the migrations
	assert.NoError(t, MigrateHistory(&bytes.Buffer{}, schema.SQLiteBackend, dbPath, -1))
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, backend := range []string{"sqlite", "mysql", "postgresql"} {
		entries, err := migrationsFS.ReadDir("migrations/" + backend)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 6, "%s should have up and down files for 3 versions", backend)
	}
}
