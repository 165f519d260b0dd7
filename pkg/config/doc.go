// Package config loads typed configuration structs from environment
// variables using `env` struct tags, with optional .env file support for
// local development.
//
// Each configuration type is parsed exactly once per process and cached, so
// components constructed at different times observe the same values.
//
// Usage:
//
//	type CacheConfig struct {
//		TTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"1h"`
//	}
//
//	var cfg CacheConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
package config
