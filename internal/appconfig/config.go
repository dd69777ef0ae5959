package appconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"spring-boot-operator/pkg/logging"
)

const (
	// DefaultPort is the Spring Boot server port when none is configured.
	DefaultPort = 8080

	// EnvApplicationJSON carries the application configuration to Spring Boot.
	EnvApplicationJSON = "SPRING_APPLICATION_JSON"

	// EnvJavaToolOptions carries JVM flags to the java launcher.
	EnvJavaToolOptions = "JAVA_TOOL_OPTIONS"
)

var (
	// ErrInvalidConfigSyntax means application-config is not JSON.
	ErrInvalidConfigSyntax = errors.New("application-config is not valid JSON")

	// ErrInvalidConfigShape means application-config is JSON but not an object.
	ErrInvalidConfigShape = errors.New("application-config is not a JSON object")

	// ErrInvalidPortValue means server.port is present but not a positive integer.
	ErrInvalidPortValue = errors.New("server.port is not a positive integer")
)

// ResolveApplicationConfig decodes the application-config option.
//
// An empty value yields a nil config. When datasource is set it is written to
// spring.datasource, replacing whatever the option declared there, and a
// config object is created if needed.
func ResolveApplicationConfig(raw string, datasource Datasource) (map[string]any, error) {
	var config map[string]any

	if strings.TrimSpace(raw) != "" {
		decoder := json.NewDecoder(strings.NewReader(raw))
		decoder.UseNumber()

		var value any
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfigSyntax, err)
		}
		if decoder.More() {
			return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidConfigSyntax)
		}

		object, ok := value.(map[string]any)
		if !ok {
			logging.Error("ConfigResolver", nil, "Invalid application-config value: %q", raw)
			return nil, ErrInvalidConfigShape
		}
		config = object
	}

	if datasource.IsZero() {
		return config, nil
	}

	if config == nil {
		config = map[string]any{}
	}
	spring, ok := config["spring"].(map[string]any)
	if !ok {
		spring = map[string]any{}
		config["spring"] = spring
	}
	spring["datasource"] = map[string]any{
		"url":      datasource.URL,
		"username": datasource.Username,
		"password": datasource.Password,
	}
	logging.Debug("ConfigResolver", "Injected datasource %s into application config", datasource.URL)

	return config, nil
}

// ResolvePort returns server.port from config, or DefaultPort when the key is
// absent. A present port, null included, must be a positive integer.
func ResolvePort(config map[string]any) (int, error) {
	server, ok := config["server"].(map[string]any)
	if !ok {
		return DefaultPort, nil
	}
	value, ok := server["port"]
	if !ok {
		return DefaultPort, nil
	}

	port, ok := positiveInt(value)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPortValue, value)
	}
	logging.Debug("ConfigResolver", "Port configuration detected in application-config, server port is %d", port)
	return port, nil
}

func positiveInt(value any) (int, bool) {
	var n float64
	switch v := value.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil || i <= 0 || i > math.MaxInt32 {
			return 0, false
		}
		return int(i), true
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		return 0, false
	}
	if n <= 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// Environment builds the service environment from the resolved config and
// JVM options. Empty inputs contribute no variables.
func Environment(config map[string]any, jvmOptions string) (map[string]string, error) {
	env := map[string]string{}
	if config != nil {
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(config); err != nil {
			return nil, fmt.Errorf("failed to encode application config: %w", err)
		}
		env[EnvApplicationJSON] = strings.TrimRight(buf.String(), "\n")
	}
	if jvmOptions != "" {
		env[EnvJavaToolOptions] = jvmOptions
	}
	return env, nil
}
