package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"spring-boot-operator/pkg/logging"
)

const (
	configFileName = "config.yaml"

	EnvPodName      = "POD_NAME"
	EnvPodNamespace = "POD_NAMESPACE"
)

// DefaultConfigDir is where the operator looks for config.yaml in its pod.
const DefaultConfigDir = "/etc/spring-boot-operator"

// ConfigFile returns the path of config.yaml inside configPath.
func ConfigFile(configPath string) string {
	return filepath.Join(configPath, configFileName)
}

// LoadConfig loads config.yaml from configPath over the defaults and applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()
	configFilePath := ConfigFile(configPath)

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	applyEnv(&config)

	if errs := config.Validate(); errs.HasErrors() {
		return Config{}, FormatValidationError("config", configFilePath, errs)
	}
	return config, nil
}

// LoadOptions reads only the options section of config.yaml. It is called on
// every reconciliation pass so edits take effect without a restart.
func LoadOptions(configPath string) (Options, error) {
	data, err := os.ReadFile(ConfigFile(configPath))
	if errors.Is(err, os.ErrNotExist) {
		return Options{}, nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("error reading options: %w", err)
	}

	var doc struct {
		Options Options `yaml:"options"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Options{}, fmt.Errorf("error decoding options: %w", err)
	}
	return doc.Options, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv(EnvPodName); v != "" {
		config.Unit.PodName = v
	}
	if v := os.Getenv(EnvPodNamespace); v != "" {
		config.Unit.Namespace = v
	}
}
