package config

import "time"

const (
	DefaultAppName          = "spring-boot"
	DefaultContainer        = "spring-boot-app"
	DefaultPebbleSocket     = "/charm/containers/spring-boot-app/pebble.socket"
	DefaultDatabaseRelation = "mysql_client"
	DefaultDatabaseName     = "spring-boot"
	DefaultIngressRelation  = "nginx_ingress"
	DefaultRelationLabel    = "spring-boot-operator/relation"
)

// GetDefaultConfig returns the configuration used when config.yaml is absent
// and the base that config.yaml is decoded over.
func GetDefaultConfig() Config {
	return Config{
		Unit: UnitConfig{
			AppName:   DefaultAppName,
			Container: DefaultContainer,
		},
		Pebble: PebbleConfig{
			Socket: DefaultPebbleSocket,
		},
		Database: DatabaseConfig{
			Relation: DefaultDatabaseRelation,
			Name:     DefaultDatabaseName,
		},
		Ingress: IngressConfig{
			Relation: DefaultIngressRelation,
		},
		Relations: RelationsConfig{
			LabelKey: DefaultRelationLabel,
		},
		Reconcile: ReconcileConfig{
			InitialBackoff:   time.Second,
			MaxBackoff:       5 * time.Minute,
			DebounceInterval: 500 * time.Millisecond,
			Timeout:          2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
