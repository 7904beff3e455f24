package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadProfilesMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	profiles, err := LoadProfiles(dir)
	require.NoError(t, err)
	require.Empty(t, profiles)
}

func TestLoadProfilesParsesToml(t *testing.T) {
	dir := t.TempDir()
	content := []byte("[[profile]]\nname = \"release\"\nprofile_mask = 2\neffect_mask = 0\n\n[[profile]]\nname = \"debug\"\nprofile_mask = 1\neffect_mask = 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.toml"), content, 0o600))

	profiles, err := LoadProfiles(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	release, ok := FindProfile(profiles, "release")
	require.True(t, ok)
	require.Equal(t, uint32(2), release.ProfileMask)

	_, ok = FindProfile(profiles, "nonexistent")
	require.False(t, ok)
}
