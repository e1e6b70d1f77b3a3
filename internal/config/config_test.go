package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := Default("Acme Books")
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Books", got.Project.Name)
	assert.Equal(t, "$", got.Project.CurrencySymbol)
	assert.Equal(t, "abort", got.Apply.OnError)
	assert.True(t, got.Git.AutoCommit)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default("Acme Books")))

	t.Setenv("TALLY_ON_ERROR", "skip")
	t.Setenv("TALLY_LOG_LEVEL", "debug")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "skip", got.Apply.OnError)
	assert.Equal(t, "debug", got.Apply.LogLevel)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefault(t *testing.T) {
	cfg := Default("X")
	assert.Equal(t, "X", cfg.Project.Name)
	assert.Equal(t, "info", cfg.Apply.LogLevel)
	assert.NotEmpty(t, cfg.Git.AuthorName)
}
