// Package config provides configuration loading, defaults, and validation
// for the timeline engine.
package config

// ApplyDefaults fills every unset (zero-valued) field of cfg with the
// engine's standard defaults.  The defaults reproduce the documented
// behaviour of the analysis pipeline: 100/200-character context windows,
// 0.75 similarity threshold, 48h/14d/21d relationship windows, 5/15/30%
// significance cut points, and the 10-point stable band.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "timeline_engine"
	}

	if cfg.Resolver.CueWindow == 0 {
		cfg.Resolver.CueWindow = 100
	}
	if cfg.Resolver.DateWindow == 0 {
		cfg.Resolver.DateWindow = 200
	}

	if cfg.Identity.SimilarityThreshold == 0 {
		cfg.Identity.SimilarityThreshold = 0.75
		// merge_same_date defaults on only together with the threshold, so
		// an explicit all-zero Identity section still gets both defaults.
		cfg.Identity.MergeSameDate = true
	}

	if cfg.Inference.TriggerWindowHours == 0 {
		cfg.Inference.TriggerWindowHours = 48
	}
	if cfg.Inference.TriggerUrgentHours == 0 {
		cfg.Inference.TriggerUrgentHours = 24
	}
	if cfg.Inference.LeadsToWindowDays == 0 {
		cfg.Inference.LeadsToWindowDays = 14
	}
	if cfg.Inference.LeadsToEarlyDays == 0 {
		cfg.Inference.LeadsToEarlyDays = 7
	}
	if cfg.Inference.RespondsToWindowDays == 0 {
		cfg.Inference.RespondsToWindowDays = 21
	}

	if cfg.Response.GoodKPS == 0 {
		cfg.Response.GoodKPS = 70
	}
	if cfg.Response.GoodMRS == 0 {
		cfg.Response.GoodMRS = 2
	}
	if cfg.Response.DurabilityDefault == 0 {
		cfg.Response.DurabilityDefault = 20
	}
	if cfg.Response.SideEffectPenalty == 0 {
		cfg.Response.SideEffectPenalty = 5
	}

	if cfg.Evolution.SignificanceMinor == 0 {
		cfg.Evolution.SignificanceMinor = 0.05
	}
	if cfg.Evolution.SignificanceModerate == 0 {
		cfg.Evolution.SignificanceModerate = 0.15
	}
	if cfg.Evolution.SignificanceMajor == 0 {
		cfg.Evolution.SignificanceMajor = 0.30
	}
	if cfg.Evolution.StableBand == 0 {
		cfg.Evolution.StableBand = 10
	}
	if cfg.Evolution.CrossScaleMinDelta == 0 {
		cfg.Evolution.CrossScaleMinDelta = 5
	}
	if cfg.Evolution.RapidRate == 0 {
		cfg.Evolution.RapidRate = 20
	}
	if cfg.Evolution.GradualRate == 0 {
		cfg.Evolution.GradualRate = 5
	}
}

// Default returns a fully-defaulted, validated configuration.  It is the
// configuration the engine runs with when no file and no environment
// overrides are supplied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
