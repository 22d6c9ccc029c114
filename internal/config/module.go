// Package config provides configuration loading and its Fx module.
package config

import (
	"go.uber.org/fx"
)

// Path is the configuration file location supplied to the Fx graph.
type Path string

// Module provides *Config from a supplied Path.
var Module = fx.Module("config",
	fx.Provide(func(p Path) (*Config, error) {
		return LoadConfig(string(p))
	}),
)
