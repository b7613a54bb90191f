package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/husseinbouik/taskman/internal/db"
)

func open(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestSettings_Roundtrip(t *testing.T) {
	database := open(t)

	value, err := database.GetSetting("missing")
	require.NoError(t, err)
	require.Empty(t, value)

	require.NoError(t, database.SetSetting("session_token", "abc123"))
	value, err = database.GetSetting("session_token")
	require.NoError(t, err)
	require.Equal(t, "abc123", value)

	// Upsert overwrites
	require.NoError(t, database.SetSetting("session_token", "def456"))
	value, err = database.GetSetting("session_token")
	require.NoError(t, err)
	require.Equal(t, "def456", value)
}

func TestSettings_Delete(t *testing.T) {
	database := open(t)

	require.NoError(t, database.SetSetting("last_route", "tasks"))
	require.NoError(t, database.DeleteSetting("last_route"))

	value, err := database.GetSetting("last_route")
	require.NoError(t, err)
	require.Empty(t, value)

	// Deleting a missing key is not an error
	require.NoError(t, database.DeleteSetting("last_route"))
}
