// Package config loads the configuration for the commands.
package config

import (
	"os"
	"path/filepath"

	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/schema"
)

var (
	// ConfigPath is the path of the configuration file.
	// kycflow.yaml in the current directory is used if it exists.
	ConfigPath string
	// Root overrides the root directory of the configuration.
	Root string
	// EnvFile is the path of the dotenv file. It defaults to .env next to the configuration file.
	EnvFile string
)

// Load loads the configuration.
func Load() (*schema.Config, error) {
	path := ConfigPath
	if path == "" {
		if _, err := os.Stat(schema.DefaultConfigFileName); err == nil {
			path = schema.DefaultConfigFileName
		}
	}
	var opts []schema.LoadOption
	if EnvFile != "" {
		opts = append(opts, schema.WithEnvFile(EnvFile))
	}
	cfg, err := schema.LoadConfig(path, opts...)
	if err != nil {
		return nil, err
	}
	if Root != "" {
		abs, err := filepath.Abs(Root)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve the root directory")
		}
		cfg.Root = abs
	}
	return cfg, nil
}
