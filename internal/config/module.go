package config

import "go.uber.org/fx"

// ConfigPath is supplied via fx.Supply by each cmd/ binary so Module stays
// generic across services.
type ConfigPath string

// Module provides a loaded *Config to the fx graph.
var Module = fx.Module("config",
	fx.Provide(func(path ConfigPath) (*Config, error) {
		return Load(string(path))
	}),
)
