package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"spring-boot-operator/internal/config"
	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/pkg/logging"
)

// Application represents the operator process. It owns the configuration
// and the wired services.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: load configuration, initialize logging, wire services
//  2. Execution phase: run the event loop or a single pass
//
// Example usage:
//
//	cfg := app.NewConfig("/etc/spring-boot-operator", "", "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	clients  *Clients
	services *Services
}

// InitLogging initializes logging from the command line overrides, falling
// back to the logging section of the operator configuration.
func InitLogging(cfg *Config, output io.Writer) error {
	levelName, formatName := cfg.LogLevel, cfg.LogFormat
	if cfg.Operator != nil {
		if levelName == "" {
			levelName = cfg.Operator.Logging.Level
		}
		if formatName == "" {
			formatName = cfg.Operator.Logging.Format
		}
	}

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	format := logging.FormatText
	switch formatName {
	case "", string(logging.FormatText):
	case string(logging.FormatJSON):
		format = logging.FormatJSON
	default:
		return fmt.Errorf("unknown log format %q", formatName)
	}

	logging.Init(level, format, output)
	return nil
}

// LoadConfig loads the operator configuration into cfg.
func LoadConfig(cfg *Config) error {
	operatorCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load operator configuration from %s: %w", cfg.ConfigPath, err)
	}
	cfg.Operator = &operatorCfg
	return nil
}

// NewApplication loads the configuration, initializes logging and wires the
// services against the cluster found by controller-runtime.
func NewApplication(cfg *Config) (*Application, error) {
	if err := LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := InitLogging(cfg, os.Stderr); err != nil {
		return nil, err
	}
	logging.Info("Bootstrap", "Loaded configuration from %s", cfg.ConfigPath)

	clients, err := NewClients(nil)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to create Kubernetes clients")
		return nil, err
	}
	return NewApplicationWithClients(cfg, clients)
}

// NewApplicationWithClients wires the services for an already loaded cfg.
func NewApplicationWithClients(cfg *Config, clients *Clients) (*Application, error) {
	if cfg.Operator == nil {
		if err := LoadConfig(cfg); err != nil {
			return nil, err
		}
	}

	services, err := InitializeServices(cfg, clients)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		clients:  clients,
		services: services,
	}, nil
}

// Services returns the wired services.
func (a *Application) Services() *Services {
	return a.services
}

// Run executes the operator event loop until ctx is cancelled or a
// termination signal arrives.
func (a *Application) Run(ctx context.Context) error {
	return runOperator(ctx, a.config, a.clients, a.services)
}

// ReconcileOnce dispatches a single event of kind through the routing table
// without starting detectors, and returns the combined outcome.
func (a *Application) ReconcileOnce(ctx context.Context, kind reconciler.EventKind, relation string) reconciler.Outcome {
	timeout := a.config.Operator.Reconcile.Timeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	event := reconciler.NewEvent(kind, relation, reconciler.SourceManual)
	logging.Info("Bootstrap", "Running single reconciliation for %s", event)
	return a.services.Table.Dispatch(ctx, event)
}
