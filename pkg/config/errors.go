package config

import "errors"

var (
	// ErrParsingConfig is returned when a config struct cannot be populated.
	ErrParsingConfig = errors.New("failed to parse configuration")

	// ErrConfigNotLoaded is returned when a config type has not been loaded.
	ErrConfigNotLoaded = errors.New("configuration has not been loaded")

	// ErrNilPointer is returned when a nil pointer is provided to a loader.
	ErrNilPointer = errors.New("nil pointer provided to config loader")

	// ErrLoadingEnvFile is returned when an env file cannot be loaded.
	ErrLoadingEnvFile = errors.New("failed to load env file")
)
