// Package config loads and validates Constellation's ambient host
// configuration (config file + environment, spec.md's ambient stack).
//
// It uses Viper and godotenv to load configuration from files and
// environment variables, with environment-specific overrides: see
// LoadConfig and BaseConfig.
package config
