package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFileOrEnv(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, uint32(1), cfg.Toolchain.ToolchainVersion)
	require.True(t, cfg.Toolchain.Deterministic)
	require.Equal(t, 10, cfg.Engine.P95BudgetMillis)
}

func TestLoadReadsYamlFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("toolchain:\n  toolchain_version: 7\n  deterministic: false\nengine:\n  max_memo_entries: 500\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "janus.yaml"), content, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, uint32(7), cfg.Toolchain.ToolchainVersion)
	require.False(t, cfg.Toolchain.Deterministic)
	require.Equal(t, 500, cfg.Engine.MaxMemoEntries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("toolchain:\n  toolchain_version: 7\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "janus.yaml"), content, 0o600))

	t.Setenv("JANUS_TOOLCHAIN_TOOLCHAIN_VERSION", "42")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, uint32(42), cfg.Toolchain.ToolchainVersion)
}
