package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.ServerURL)
	_, ok := cfg.ActiveDeck()
	assert.False(t, ok)
}

func TestSaveAndLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	id := uuid.New()

	require.NoError(t, SaveConfig(&Config{ServerURL: "http://localhost:9000", ActiveDeckID: id.String()}))
	_, err := os.Stat(filepath.Join(home, ".decktree", "config.json"))
	require.NoError(t, err)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.ServerURL)
	got, ok := cfg.ActiveDeck()
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestActiveDeckIgnoresGarbage(t *testing.T) {
	cfg := &Config{ActiveDeckID: "not-a-uuid"}
	_, ok := cfg.ActiveDeck()
	assert.False(t, ok)
}
