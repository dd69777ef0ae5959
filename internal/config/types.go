package config

import "time"

// Config is the top-level configuration of the operator.
type Config struct {
	Unit      UnitConfig      `yaml:"unit"`
	Pebble    PebbleConfig    `yaml:"pebble"`
	Database  DatabaseConfig  `yaml:"database"`
	Ingress   IngressConfig   `yaml:"ingress"`
	Relations RelationsConfig `yaml:"relations"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Logging   LoggingConfig   `yaml:"logging"`
	Options   Options         `yaml:"options"`
}

// UnitConfig identifies the unit and its workload container.
type UnitConfig struct {
	AppName   string `yaml:"appName"`             // Application name, used for ingress defaults
	PodName   string `yaml:"podName,omitempty"`   // Pod running the unit (env POD_NAME)
	Namespace string `yaml:"namespace,omitempty"` // Namespace of the pod (env POD_NAMESPACE)
	Container string `yaml:"container"`           // Workload container name
	Root      string `yaml:"root,omitempty"`      // Local root directory instead of pod exec
}

// PebbleConfig locates the Pebble daemon of the workload container.
type PebbleConfig struct {
	Socket string `yaml:"socket"`
}

// DatabaseConfig configures the MySQL datasource integration.
type DatabaseConfig struct {
	Relation string `yaml:"relation"` // Relation name
	Name     string `yaml:"name"`     // Database requested from the provider
}

// IngressConfig configures the nginx ingress integration.
type IngressConfig struct {
	Relation  string `yaml:"relation"`            // Relation name
	ConfigMap string `yaml:"configMap,omitempty"` // Published data, defaults to <appName>-ingress
}

// RelationsConfig configures how relation data is found in the cluster.
type RelationsConfig struct {
	LabelKey string `yaml:"labelKey"` // Label whose value names the relation of a Secret
}

// ReconcileConfig tunes the event loop.
type ReconcileConfig struct {
	InitialBackoff   time.Duration `yaml:"initialBackoff"`
	MaxBackoff       time.Duration `yaml:"maxBackoff"`
	DebounceInterval time.Duration `yaml:"debounceInterval"`
	Timeout          time.Duration `yaml:"timeout"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Options is the user facing configuration surface of the charm.
type Options struct {
	ApplicationConfig     string `yaml:"application-config"`
	JVMConfig             string `yaml:"jvm-config"`
	IngressHostname       string `yaml:"ingress-hostname"`
	IngressStripURLPrefix string `yaml:"ingress-strip-url-prefix"`
}

// IngressConfigMapName returns the ConfigMap holding published ingress data.
func (c Config) IngressConfigMapName() string {
	if c.Ingress.ConfigMap != "" {
		return c.Ingress.ConfigMap
	}
	return c.Unit.AppName + "-ingress"
}
