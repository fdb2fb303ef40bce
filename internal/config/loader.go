package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "TIMELINE"

// configKeys lists every settable key.  AutomaticEnv only surfaces keys
// viper already knows about, so each key is registered with a nil default
// to make TIMELINE_* overrides bind even without a config file.
var configKeys = []string{
	"log.level", "log.format",
	"metrics.enabled", "metrics.namespace",
	"resolver.cue_window", "resolver.date_window",
	"identity.similarity_threshold", "identity.merge_same_date",
	"inference.trigger_window_hours", "inference.trigger_urgent_hours",
	"inference.leads_to_window_days", "inference.leads_to_early_days",
	"inference.responds_to_window_days",
	"response.good_kps", "response.good_mrs",
	"response.durability_default", "response.side_effect_penalty",
	"evolution.significance_minor", "evolution.significance_moderate",
	"evolution.significance_major", "evolution.stable_band",
	"evolution.cross_scale_min_delta", "evolution.rapid_rate",
	"evolution.gradual_rate",
}

// newViper builds a pre-configured Viper instance with the engine's standard
// settings: YAML file type, TIMELINE_ env prefix, automatic env binding, and
// a key replacer that maps "." → "_" so that nested keys like
// "identity.similarity_threshold" resolve to
// "TIMELINE_IDENTITY_SIMILARITY_THRESHOLD".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		v.SetDefault(key, nil)
	}
	return v
}

// Load reads the YAML file at configPath, merges any TIMELINE_* environment
// variable overrides, applies engine defaults for unset fields, and validates
// the result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from TIMELINE_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  The engine treats a
// loaded Config as immutable, so onChange is only suitable for settings that
// are safe to swap between pipeline runs (log level, metric namespace).
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// If the changed file fails to parse or validate, onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors surface on the first Load, not here.
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			// An invalid edit must not push the engine into a broken state.
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
