// Package config loads livefeed configuration from YAML files,
// .env files, and environment variables using Viper.
//
// # Usage
//
//	var cfg feed.Config
//	err := config.Load("livefeed", &cfg)
//
// Environment variables override file values using the upper-cased
// name as prefix with underscore-separated paths, e.g.
// LIVEFEED_BASE_URL overrides the base_url key.
package config
