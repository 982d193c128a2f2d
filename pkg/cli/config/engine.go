package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"github.com/voxlab-io/speakerid/pkg/domain/model/config"
)

// Engine holds CLI flags for engine tuning parameters
type Engine struct {
	path string
}

// Flags returns CLI flags for engine configuration
func (e *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "engine-config",
			Usage:       "Path to TOML file with engine tuning parameters",
			Sources:     cli.EnvVars("SPEAKERID_ENGINE_CONFIG"),
			Destination: &e.path,
		},
	}
}

// Configure loads the engine configuration. Without a file the defaults
// apply; a file overrides only the keys it sets.
func (e *Engine) Configure() (*config.Engine, error) {
	cfg := config.DefaultEngine()
	if e.path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read engine config", goerr.V("path", e.path))
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse engine config", goerr.V("path", e.path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid engine config", goerr.V("path", e.path))
	}
	return cfg, nil
}
