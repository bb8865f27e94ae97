package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReadOnlyMissingFile(t *testing.T) {
	_, err := New(Config{Path: filepath.Join(t.TempDir(), "missing.db"), Name: "reference"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNew_ReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.db")

	rw, err := New(Config{Path: path, Profile: ProfileStandard, Name: "build"})
	require.NoError(t, err)
	_, err = rw.Conn().Exec("CREATE TABLE lme_data (month INTEGER)")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := New(Config{Path: path, Name: "reference"})
	require.NoError(t, err)
	defer ro.Close()

	assert.Equal(t, ProfileReadOnly, ro.profile)
	assert.Equal(t, "reference", ro.Name())
	assert.Equal(t, path, ro.Path())

	ok, err := ro.HasTable(context.Background(), "lme_data")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ro.HasTable(context.Background(), "price_table")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ro.Conn().Exec("INSERT INTO lme_data (month) VALUES (1)")
	assert.Error(t, err)
}

func TestBuildConnectionString(t *testing.T) {
	assert.Contains(t, buildConnectionString("/tmp/a.db", ProfileReadOnly), "query_only(1)")
	assert.Contains(t, buildConnectionString("/tmp/a.db", ProfileStandard), "journal_mode(WAL)")
	assert.Contains(t, buildConnectionString("file:x?mode=memory", ProfileReadOnly), "file:x?mode=memory&_pragma")
}
