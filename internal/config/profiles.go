package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Profile names one named toolchain configuration a unit can be built
// under, e.g. "debug" vs "release" — distinct ProfileMask/EffectMask
// combinations that must each get their own CIDs for the same AST.
type Profile struct {
	Name        string `toml:"name"`
	ProfileMask uint32 `toml:"profile_mask"`
	EffectMask  uint32 `toml:"effect_mask"`
}

type profilesFile struct {
	Profile []Profile `toml:"profile"`
}

// LoadProfiles reads a profiles.toml manifest (one [[profile]] table per
// named profile) from dir. A missing file returns an empty, non-error
// result: profiles are an opt-in feature, not a required manifest.
func LoadProfiles(dir string) ([]Profile, error) {
	path := filepath.Join(dir, "profiles.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var pf profilesFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	slog.Default().With("component", "config").Debug("loaded profiles", "path", path, "count", len(pf.Profile))
	return pf.Profile, nil
}

// FindProfile returns the named profile, or false if no profile by that
// name was loaded.
func FindProfile(profiles []Profile, name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
