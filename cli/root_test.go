package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kutbudev/decktree/internal/app"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	dir := t.TempDir()
	t.Chdir(dir)
	dbPath := filepath.Join(dir, "ctl.db")
	t.Setenv("DECKTREE_DATABASE_PATH", dbPath)
	t.Setenv("DECKTREE_LOG_MODE", "nop")
	return dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	dbPath := setupEnv(t)
	out, err := execute(t, "migrate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Migrated sqlite database")
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestResetRequiresConfirmation(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "reset")
	assert.ErrorContains(t, err, "--yes")
}

func TestReset(t *testing.T) {
	dbPath := setupEnv(t)
	ctx := context.Background()

	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: dbPath}}
	a, err := app.New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	d, err := a.Service.CreateDeck(ctx, "deck")
	require.NoError(t, err)
	s, err := a.Service.CreateSlide(ctx, "slide")
	require.NoError(t, err)
	_, err = a.Service.AddChild(ctx, d.ID, s.ID)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	out, err := execute(t, "reset", "--yes")
	require.NoError(t, err, out)

	a, err = app.New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer a.Close()
	nodes, err := a.Service.ListNodes(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	setupEnv(t)
	t.Setenv("DECKTREE_DATABASE_PASSWORD", "hunter2")
	t.Setenv("DECKTREE_TRAVERSAL_MAX_DEPTH", "7")

	out, err := execute(t, "config", "show")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "max_depth: 7")
	assert.Contains(t, out, "driver: sqlite")
}

func TestConfigShowBadFile(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "--config", "missing.yaml", "config", "show")
	assert.Error(t, err)
}
