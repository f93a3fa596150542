package engine

import (
	"fmt"

	"sqljob-generator/internal/config"
	"sqljob-generator/internal/gen"
	"sqljob-generator/internal/manifest"
	"sqljob-generator/internal/mapping"
	"sqljob-generator/internal/plan"
)

// OptionsFromConfig translates a validated configuration into run options,
// loading the hint document when one is configured.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	format, err := manifest.ParseFormat(cfg.Output.ManifestFormat)
	if err != nil {
		return Options{}, err
	}

	hints := mapping.DefaultHints()
	if cfg.Input.HintsPath != "" {
		if hints, err = mapping.LoadHints(cfg.Input.HintsPath); err != nil {
			return Options{}, fmt.Errorf("loading hints: %w", err)
		}
	}

	resolution := plan.DefaultConfig()
	resolution.Hints = hints

	return Options{
		Malcode:   cfg.Input.Malcode,
		OutputDir: cfg.Output.Dir,
		Generator: gen.GeneratorConfig{
			SQLPrefix:   cfg.Output.SQLPrefix,
			AuditPrefix: cfg.Output.AuditPrefix,
		},
		ManifestPrefix: cfg.Output.ManifestPrefix,
		ManifestFormat: format,
		SQLByReference: cfg.Output.SQLByReference,
		Debug: DebugOptions{
			Dir:             cfg.Debug.Dir,
			Joins:           cfg.Debug.JoinDebug,
			BusinessRules:   cfg.Debug.BusinessRuleDebug,
			Transformations: cfg.Debug.TransformationDebug,
			Validator:       cfg.Debug.ValidatorDebug,
		},
		Resolution: resolution,
	}, nil
}
