package pebble

import (
	"fmt"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

const (
	// ServiceName is the supervised Spring Boot service.
	ServiceName = "spring-boot-app"

	// CheckName is the liveness check of ServiceName.
	CheckName = ServiceName + "-alive"

	// LayerLabel labels the layer added by the operator.
	LayerLabel = ServiceName

	// HealthPath is the Spring Boot actuator health endpoint.
	HealthPath = "/actuator/health"
)

// Override policies understood by Pebble.
const (
	OverrideReplace = "replace"
	OverrideMerge   = "merge"
)

// Layer is a Pebble configuration layer.
type Layer struct {
	Summary     string             `yaml:"summary,omitempty"`
	Description string             `yaml:"description,omitempty"`
	Services    map[string]Service `yaml:"services,omitempty"`
	Checks      map[string]Check   `yaml:"checks,omitempty"`
}

// Service is one supervised process. Command is a single shell-like string
// in the Pebble layer format; Pebble splits it back into arguments.
type Service struct {
	Override    string            `yaml:"override"`
	Summary     string            `yaml:"summary,omitempty"`
	Command     string            `yaml:"command"`
	Startup     string            `yaml:"startup,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// Check is a health check attached to the plan.
type Check struct {
	Override string     `yaml:"override"`
	Level    string     `yaml:"level,omitempty"`
	HTTP     *HTTPCheck `yaml:"http,omitempty"`
}

// HTTPCheck succeeds when URL answers with a 2xx status.
type HTTPCheck struct {
	URL string `yaml:"url"`
}

// Build returns the layer running command with env and probing the actuator
// health endpoint on port.
func Build(command []string, env map[string]string, port int) Layer {
	return Layer{
		Services: map[string]Service{
			ServiceName: {
				Override:    OverrideReplace,
				Summary:     "Spring Boot application service",
				Command:     shellquote.Join(command...),
				Startup:     "enabled",
				Environment: env,
			},
		},
		Checks: map[string]Check{
			CheckName: {
				Override: OverrideReplace,
				Level:    "alive",
				HTTP:     &HTTPCheck{URL: HealthURL(port)},
			},
		},
	}
}

// HealthURL is the URL probed by the liveness check.
func HealthURL(port int) string {
	return fmt.Sprintf("http://localhost:%d%s", port, HealthPath)
}

// Marshal renders the layer as a YAML document.
func (l Layer) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layer: %w", err)
	}
	return out, nil
}

// ParseLayer decodes a YAML layer document.
func ParseLayer(data []byte) (Layer, error) {
	var layer Layer
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return Layer{}, fmt.Errorf("failed to parse layer: %w", err)
	}
	return layer, nil
}
