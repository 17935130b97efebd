package config

import "errors"

// Sentinel errors for configuration loading.
var (
	// ErrInvalidFile is returned when a file cannot be decoded into a map.
	ErrInvalidFile = errors.New("config: invalid configuration file")

	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
)
