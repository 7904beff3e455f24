package main

import (
	"fmt"

	"github.com/janus-lang/astdb/internal/cid"
	"github.com/janus-lang/astdb/internal/config"
)

// resolveToolchainOpts loads janus.yaml/env config from configPathFlag,
// then overlays a named profile from profiles.toml if --profile was
// given, producing the cid.ToolchainOpts a build/query/diff run should
// hash nodes under.
func resolveToolchainOpts() (cid.ToolchainOpts, error) {
	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return cid.ToolchainOpts{}, fmt.Errorf("loading config: %w", err)
	}
	opts := cfg.Toolchain

	if profileFlag == "" {
		return opts, nil
	}

	profiles, err := config.LoadProfiles(configPathFlag)
	if err != nil {
		return cid.ToolchainOpts{}, fmt.Errorf("loading profiles: %w", err)
	}
	p, ok := config.FindProfile(profiles, profileFlag)
	if !ok {
		return cid.ToolchainOpts{}, fmt.Errorf("no profile named %q in profiles.toml", profileFlag)
	}
	opts.ProfileMask = p.ProfileMask
	opts.EffectMask = p.EffectMask
	return opts, nil
}
