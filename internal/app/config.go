package app

import (
	"spring-boot-operator/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath is the directory holding config.yaml
	ConfigPath string

	// LogLevel and LogFormat override the logging section of config.yaml
	// when set.
	LogLevel  string
	LogFormat string

	// Version is the operator version, compared against the recorded one
	// to tell an upgrade from a plain start
	Version string

	// Operator is the loaded operator configuration
	Operator *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(configPath, logLevel, logFormat string) *Config {
	if configPath == "" {
		configPath = config.DefaultConfigDir
	}
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
	}
}
