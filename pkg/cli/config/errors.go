package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidLoggerConfig  = goerr.New("invalid logger configuration")
	ErrInvalidRepository    = goerr.New("invalid repository backend")
	ErrInvalidMappingsFile  = goerr.New("invalid tag mappings file")
)
