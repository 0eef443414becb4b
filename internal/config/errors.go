package config

import "errors"

var (
	// ErrInvalidConfig marks a configuration that loaded but fails Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, dotenv or environment source that could
	// not be read or decoded.
	ErrLoadConfig = errors.New("load config failed")
)
