package migrator

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"dirwatch/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"migrations/1_create_items.up.sql":   {Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"migrations/1_create_items.down.sql": {Data: []byte("DROP TABLE items;")},
		"migrations/2_index_name.up.sql":     {Data: []byte("CREATE INDEX idx_items_name ON items (name);")},
		"migrations/2_index_name.down.sql":   {Data: []byte("DROP INDEX idx_items_name;")},
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrator_UpAndDown(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, Config{
		MigrationsFS:   testMigrations(),
		MigrationsPath: "migrations",
	}, slogdiscard.NewDiscardLogger())

	version, dirty, err := m.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, m.MigrateUp())

	version, dirty, err = m.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	_, err = db.Exec("INSERT INTO items (name) VALUES ('a')")
	require.NoError(t, err)

	// applying again is a no-op
	require.NoError(t, m.MigrateUp())

	require.NoError(t, m.MigrateDown())
	version, _, err = m.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	_, err = db.Exec("SELECT 1 FROM items")
	assert.Error(t, err, "table dropped by down migrations")
}

func TestMigrator_InvalidDirection(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, Config{MigrationsFS: testMigrations(), MigrationsPath: "migrations"}, nil)

	assert.Error(t, m.RunMigrations("sideways"))
}

func TestMigrator_MissingSource(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, Config{MigrationsFS: fstest.MapFS{}, MigrationsPath: "nowhere"}, nil)

	assert.Error(t, m.MigrateUp())
}

func TestMigrator_NoSource(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, Config{MigrationsPath: "migrations"}, nil)

	assert.ErrorIs(t, m.MigrateUp(), ErrNoMigrations)
	_, _, err := m.GetMigrationVersion()
	assert.ErrorIs(t, err, ErrNoMigrations)
}
