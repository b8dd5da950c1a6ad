package config

import (
	saltConfig "github.com/goto/salt/config"

	"github.com/goto/pulse/internal/errors"
)

const (
	EntityConfig = "config"

	defaultConfigName = "config"
	defaultEnvPrefix  = "PULSE"
)

// LoadServerConfig reads the server configuration from the given yaml file,
// with PULSE_ environment variables taking precedence. An empty path falls
// back to config.yaml in the working directory.
func LoadServerConfig(filePath string) (*ServerConfig, error) {
	opts := []saltConfig.LoaderOption{
		saltConfig.WithEnvPrefix(defaultEnvPrefix),
		saltConfig.WithEnvKeyReplacer(".", "_"),
	}
	if filePath != "" {
		opts = append(opts, saltConfig.WithFile(filePath))
	} else {
		opts = append(opts, saltConfig.WithName(defaultConfigName), saltConfig.WithPath("./"))
	}

	cfg := &ServerConfig{}
	if err := saltConfig.NewLoader(opts...).Load(cfg); err != nil {
		return nil, errors.Wrap(EntityConfig, "unable to load server config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(EntityConfig, "invalid server config", err)
	}
	return cfg, nil
}
