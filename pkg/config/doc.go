// Package config loads application configuration from environment variables
// and YAML policy files.
//
// Environment loading wraps github.com/joho/godotenv and
// github.com/caarlos0/env/v11: annotate a struct with `env` tags and pass it
// to Load. Each configuration type is parsed once per process and cached;
// ResetCache and ForceReloadConfig exist for tests that mutate the
// environment.
//
//	type SessionConfig struct {
//	    CookieName  string        `env:"SESSION_COOKIE_NAME" envDefault:"session"`
//	    IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"24h"`
//	}
//
//	var cfg SessionConfig
//	config.MustLoad(&cfg)
//
// LoadEnv loads one or more .env files before parsing; later files override
// earlier ones.
//
// LoadFile reads YAML into a struct for deploy-time policy that does not fit
// environment variables, such as the public route patterns consumed by the
// isolation pipeline:
//
//	var policy struct {
//	    PublicRoutes []string `yaml:"public_routes"`
//	}
//	err := config.LoadFile("routes.yaml", &policy)
//
// Sentinel errors (ErrParsingConfig, ErrNilPointer, ...) can be checked with
// errors.Is.
package config
