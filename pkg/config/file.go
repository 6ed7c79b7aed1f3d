package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"nst/pkg/nsterr"
)

// LoadFile reads a YAML-encoded RunConfig from path, validates it, and
// returns it. No cmd/nst command calls LoadFile or offers a flag for a
// config file; the commands build their configuration from flags alone.
func LoadFile(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nsterr.Wrap(nsterr.Config, err, "reading config file %s", path)
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nsterr.Wrap(nsterr.Config, err, "parsing config file %s", path)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, nsterr.New(nsterr.Config, "config file %s is invalid: %s", path, joinErrors(errs))
	}

	return &cfg, nil
}

func joinErrors(errs []error) string {
	s := ""
	for i, err := range errs {
		if i > 0 {
			s += "; "
		}
		s += err.Error()
	}
	return s
}
