// Package config loads engine tuning parameters and cid.ToolchainOpts
// from a local janus.yaml file and environment variables (JANUS_
// prefixed), in that ascending order of precedence. Command-line flags
// are not read here.
//
// It uses a dedicated *viper.Viper instance with SetConfigType("yaml") and
// ReadInConfig, and AutomaticEnv() to map the JANUS_ prefix onto every
// bound key without an explicit BindEnv call per field.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/janus-lang/astdb/internal/cid"
)

// EnvPrefix is the prefix every environment variable override must carry,
// e.g. JANUS_ENGINE_MAX_MEMO_ENTRIES.
const EnvPrefix = "JANUS"

// Config holds every tunable the engine and CLI read at startup.
type Config struct {
	Toolchain cid.ToolchainOpts `mapstructure:"toolchain"`
	Engine    EngineConfig      `mapstructure:"engine"`
}

// EngineConfig tunes the query engine and dependency graph.
type EngineConfig struct {
	// MaxMemoEntries bounds the query engine's memo cache; 0 means
	// unbounded. Eviction policy is left to the caller — this just
	// exposes the knob.
	MaxMemoEntries int `mapstructure:"max_memo_entries"`
	// P95BudgetMillis is the perfmon guardrail threshold; defaults to 10
	// (perfmon.Budget in milliseconds) when unset. An explicit zero is
	// kept as zero.
	P95BudgetMillis int `mapstructure:"p95_budget_millis"`
}

// defaults mirrors the zero-config behavior a fresh checkout should get:
// deterministic toolchain options, no memo cap, and perfmon's default
// 10ms p95 budget.
func defaults() Config {
	return Config{
		Toolchain: cid.ToolchainOpts{
			ToolchainVersion: 1,
			ProfileMask:      0,
			EffectMask:       0,
			Deterministic:    true,
		},
		Engine: EngineConfig{
			MaxMemoEntries:  0,
			P95BudgetMillis: 10,
		},
	}
}

// Load reads janus.yaml (if present in any of configPaths) then overlays
// JANUS_-prefixed environment variables, returning the merged Config.
// A missing config file is not an error: defaults() plus environment
// overrides still produce a usable Config.
func Load(configPaths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("janus")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaults()
	v.SetDefault("toolchain.toolchain_version", def.Toolchain.ToolchainVersion)
	v.SetDefault("toolchain.profile_mask", def.Toolchain.ProfileMask)
	v.SetDefault("toolchain.effect_mask", def.Toolchain.EffectMask)
	v.SetDefault("toolchain.deterministic", def.Toolchain.Deterministic)
	v.SetDefault("engine.max_memo_entries", def.Engine.MaxMemoEntries)
	v.SetDefault("engine.p95_budget_millis", def.Engine.P95BudgetMillis)

	log := slog.Default().With("component", "config")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("config: reading janus.yaml: %w", err)
		}
		log.Debug("no janus.yaml found, using defaults and env overrides")
	} else {
		log.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	cfg.Toolchain.ToolchainVersion = uint32(v.GetUint("toolchain.toolchain_version"))
	cfg.Toolchain.ProfileMask = uint32(v.GetUint("toolchain.profile_mask"))
	cfg.Toolchain.EffectMask = uint32(v.GetUint("toolchain.effect_mask"))
	cfg.Toolchain.Deterministic = v.GetBool("toolchain.deterministic")
	cfg.Engine.MaxMemoEntries = v.GetInt("engine.max_memo_entries")
	cfg.Engine.P95BudgetMillis = v.GetInt("engine.p95_budget_millis")

	return cfg, nil
}
