// Package config defines all configuration structures for the timeline
// engine.  No I/O or parsing logic lives here — only plain data types and
// validation.  A loaded Config is treated as immutable for the lifetime of
// the process.
package config

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// MetricsConfig holds Prometheus collector parameters.  The engine registers
// collectors on an injected registerer; it never exposes an HTTP endpoint
// itself.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ResolverConfig tunes negation and temporal-context resolution.
type ResolverConfig struct {
	// CueWindow is the ± character window scanned for negation and
	// reference cues around a mention.
	CueWindow int `mapstructure:"cue_window"`

	// DateWindow is the wider ± character window scanned for date text.
	DateWindow int `mapstructure:"date_window"`
}

// IdentityConfig tunes semantic identity resolution.
type IdentityConfig struct {
	// SimilarityThreshold is the combined token-overlap / edit-distance
	// score above which two names denote the same clinical concept.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`

	// MergeSameDate collapses same-date cluster members into one event.
	MergeSameDate bool `mapstructure:"merge_same_date"`
}

// InferenceConfig tunes the time-windowed relationship passes.
type InferenceConfig struct {
	TriggerWindowHours   int `mapstructure:"trigger_window_hours"`
	TriggerUrgentHours   int `mapstructure:"trigger_urgent_hours"`
	LeadsToWindowDays    int `mapstructure:"leads_to_window_days"`
	LeadsToEarlyDays     int `mapstructure:"leads_to_early_days"`
	RespondsToWindowDays int `mapstructure:"responds_to_window_days"`
}

// ResponseConfig tunes treatment-response classification.
type ResponseConfig struct {
	// GoodKPS is the Karnofsky score at or above which a discharge outcome
	// counts as good.
	GoodKPS float64 `mapstructure:"good_kps"`

	// GoodMRS is the modified-Rankin score at or below which a discharge
	// outcome counts as good.
	GoodMRS float64 `mapstructure:"good_mrs"`

	// DurabilityDefault is the durability sub-score (0-25) assumed when no
	// recurrence information exists.
	DurabilityDefault float64 `mapstructure:"durability_default"`

	// SideEffectPenalty is deducted from the side-effect sub-score per
	// associated complication.
	SideEffectPenalty float64 `mapstructure:"side_effect_penalty"`
}

// EvolutionConfig tunes functional-status trajectory analysis.
type EvolutionConfig struct {
	SignificanceMinor    float64 `mapstructure:"significance_minor"`
	SignificanceModerate float64 `mapstructure:"significance_moderate"`
	SignificanceMajor    float64 `mapstructure:"significance_major"`

	// StableBand is the absolute normalized overall change below which the
	// pattern is "stable".
	StableBand float64 `mapstructure:"stable_band"`

	// CrossScaleMinDelta is the minimum normalized delta for the cross-scale
	// change fallback.
	CrossScaleMinDelta float64 `mapstructure:"cross_scale_min_delta"`

	// RapidRate / GradualRate bucket normalized points per week.
	RapidRate   float64 `mapstructure:"rapid_rate"`
	GradualRate float64 `mapstructure:"gradual_rate"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine.  Every pipeline
// component reads its tunables from the relevant sub-struct.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Inference InferenceConfig `mapstructure:"inference"`
	Response  ResponseConfig  `mapstructure:"response"`
	Evolution EvolutionConfig `mapstructure:"evolution"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Resolver.CueWindow < 1 {
		return fmt.Errorf("config: resolver.cue_window must be >= 1, got %d", c.Resolver.CueWindow)
	}
	if c.Resolver.DateWindow < c.Resolver.CueWindow {
		return fmt.Errorf("config: resolver.date_window %d must be >= resolver.cue_window %d",
			c.Resolver.DateWindow, c.Resolver.CueWindow)
	}

	if c.Identity.SimilarityThreshold <= 0 || c.Identity.SimilarityThreshold > 1 {
		return fmt.Errorf("config: identity.similarity_threshold %.2f is out of (0,1]",
			c.Identity.SimilarityThreshold)
	}

	if c.Inference.TriggerWindowHours < 1 {
		return fmt.Errorf("config: inference.trigger_window_hours must be >= 1")
	}
	if c.Inference.TriggerUrgentHours < 1 || c.Inference.TriggerUrgentHours > c.Inference.TriggerWindowHours {
		return fmt.Errorf("config: inference.trigger_urgent_hours %d must be within (0, %d]",
			c.Inference.TriggerUrgentHours, c.Inference.TriggerWindowHours)
	}
	if c.Inference.LeadsToWindowDays < 1 || c.Inference.LeadsToEarlyDays < 1 ||
		c.Inference.LeadsToEarlyDays > c.Inference.LeadsToWindowDays {
		return fmt.Errorf("config: inference leads_to windows are inconsistent")
	}
	if c.Inference.RespondsToWindowDays < 1 {
		return fmt.Errorf("config: inference.responds_to_window_days must be >= 1")
	}

	if c.Response.GoodKPS < 0 || c.Response.GoodKPS > 100 {
		return fmt.Errorf("config: response.good_kps %.1f is out of [0,100]", c.Response.GoodKPS)
	}
	if c.Response.GoodMRS < 0 || c.Response.GoodMRS > 6 {
		return fmt.Errorf("config: response.good_mrs %.1f is out of [0,6]", c.Response.GoodMRS)
	}
	if c.Response.DurabilityDefault < 0 || c.Response.DurabilityDefault > 25 {
		return fmt.Errorf("config: response.durability_default %.1f is out of [0,25]", c.Response.DurabilityDefault)
	}

	e := c.Evolution
	if !(e.SignificanceMinor > 0 && e.SignificanceMinor < e.SignificanceModerate &&
		e.SignificanceModerate < e.SignificanceMajor && e.SignificanceMajor < 1) {
		return fmt.Errorf("config: evolution significance thresholds must satisfy 0 < minor < moderate < major < 1")
	}
	if e.StableBand <= 0 || e.StableBand >= 100 {
		return fmt.Errorf("config: evolution.stable_band %.1f is out of (0,100)", e.StableBand)
	}
	if e.GradualRate <= 0 || e.RapidRate <= e.GradualRate {
		return fmt.Errorf("config: evolution rate thresholds must satisfy 0 < gradual < rapid")
	}

	return nil
}
