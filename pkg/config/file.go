package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile populates v from a YAML file. Unlike Load, file-based configs are
// not cached: they hold deploy-time policy (such as public route patterns)
// that callers load once at startup.
//
// Example:
//
//	type RoutePolicy struct {
//		PublicRoutes []string `yaml:"public_routes"`
//	}
//
//	var policy RoutePolicy
//	if err := config.LoadFile("routes.yaml", &policy); err != nil {
//		// handle error
//	}
func LoadFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	return nil
}
