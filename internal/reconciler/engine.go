package reconciler

import (
	"context"
	"fmt"

	"spring-boot-operator/internal/appconfig"
	"spring-boot-operator/internal/config"
	"spring-boot-operator/internal/javaapp"
	"spring-boot-operator/internal/memory"
	"spring-boot-operator/internal/pebble"
	"spring-boot-operator/internal/relation"
	"spring-boot-operator/internal/unit"
	"spring-boot-operator/internal/workload"
	"spring-boot-operator/pkg/logging"
)

const (
	engineSubsystem = "Engine"

	// mysqlDriverPrefix is the file name prefix of the MySQL JDBC driver jar.
	mysqlDriverPrefix = "mysql-connector"
)

// Supervisor is the process supervisor of the workload container.
type Supervisor interface {
	AddLayer(ctx context.Context, label string, layer pebble.Layer, combine bool) error
	Replan(ctx context.Context) (string, error)
}

// StatusWriter receives the unit status. unit.Recorder implements it.
type StatusWriter interface {
	SetStatus(ctx context.Context, status unit.Status)
}

// OptionsFunc returns the current charm options.
type OptionsFunc func(ctx context.Context) (config.Options, error)

// EngineConfig holds the collaborators of an Engine.
type EngineConfig struct {
	Container  workload.Container
	Supervisor Supervisor
	Oracle     memory.Oracle
	Status     StatusWriter
	Options    OptionsFunc

	// Relations reads database relation data. Nil means no integration.
	Relations relation.Reader

	// DatabaseRelation is the name of the database relation.
	DatabaseRelation string

	// DatabaseName is the database requested from the provider.
	DatabaseName string
}

// Engine runs reconciliation passes. It is not safe for concurrent use;
// the Manager runs one pass at a time.
type Engine struct {
	config EngineConfig
}

// NewEngine creates an engine.
func NewEngine(config EngineConfig) *Engine {
	return &Engine{config: config}
}

// Plan is everything a pass computed before touching the supervisor.
type Plan struct {
	Application javaapp.Application
	Port        int
	JVMOptions  string
	Datasource  appconfig.Datasource
	Environment map[string]string
	Layer       pebble.Layer
}

// Reconcile runs a full pass for event and sets the unit status from its
// outcome. The status is set before the outcome is returned, so a caller
// deferring the event never races the status write.
func (e *Engine) Reconcile(ctx context.Context, event Event) Outcome {
	logging.Debug(engineSubsystem, "Start reconciliation, triggered by %s", event)
	e.config.Status.SetStatus(ctx, unit.Maintenance(MessageStart))

	outcome := Success()
	plan, err := e.Resolve(ctx)
	if err == nil {
		err = e.apply(ctx, plan)
	}
	if err != nil {
		re := AsError(err)
		outcome = re.Outcome()
		if outcome.Kind == OutcomeWaiting {
			logging.Warn(engineSubsystem, "Reconciliation of %s waiting: %v", event.Name(), re)
		} else {
			logging.Error(engineSubsystem, re.Err, "Reconciliation of %s blocked: %s", event.Name(), re.Status.Message)
		}
	}

	e.config.Status.SetStatus(ctx, outcome.Status())
	logging.Info(engineSubsystem, "Finished reconciliation of %s with %s", event.Name(), outcome)
	return outcome
}

// Handle implements Handler.
func (e *Engine) Handle(ctx context.Context, event Event) Outcome {
	return e.Reconcile(ctx, event)
}

// Resolve runs every step up to layer synthesis. It has no side effects on
// the supervisor; the only process it may start is the JVM dry run.
func (e *Engine) Resolve(ctx context.Context) (*Plan, error) {
	p := &pass{engine: e}
	return p.resolve(ctx)
}

func (e *Engine) apply(ctx context.Context, plan *Plan) error {
	if err := e.config.Supervisor.AddLayer(ctx, pebble.LayerLabel, plan.Layer, true); err != nil {
		return err
	}
	if _, err := e.config.Supervisor.Replan(ctx); err != nil {
		return err
	}
	logging.Info(engineSubsystem, "Applied layer for %s on port %d", plan.Application, plan.Port)
	return nil
}

// pass holds the state of one reconciliation pass. Classification runs at
// most once per pass even though the JVM dry run needs it early.
type pass struct {
	engine     *Engine
	app        javaapp.Application
	appErr     error
	classified bool
}

func (p *pass) resolve(ctx context.Context) (*Plan, error) {
	cfg := p.engine.config

	if !cfg.Container.CanConnect(ctx) {
		return nil, waitingError(MessageWaitingForPebble, fmt.Errorf("container %s is not reachable", cfg.Container.Name()))
	}

	options, err := cfg.Options(ctx)
	if err != nil {
		return nil, blockedError(MessageOptionsUnreadable, err)
	}

	datasource, err := p.datasource(ctx)
	if err != nil {
		return nil, err
	}

	applicationConfig, err := appconfig.ResolveApplicationConfig(options.ApplicationConfig, datasource)
	if err != nil {
		return nil, err
	}

	port, err := appconfig.ResolvePort(applicationConfig)
	if err != nil {
		return nil, err
	}

	validator := appconfig.JVMValidator{
		Quota:   p.quota,
		Command: p.startCommand,
		Probe:   cfg.Container.Exec,
	}
	jvmOptions, err := validator.Resolve(ctx, options.JVMConfig)
	if err != nil {
		return nil, err
	}

	app, err := p.classify(ctx)
	if err != nil {
		return nil, err
	}

	if !datasource.IsZero() {
		p.checkDriver(ctx, app)
	}

	env, err := appconfig.Environment(applicationConfig, jvmOptions)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Application: app,
		Port:        port,
		JVMOptions:  jvmOptions,
		Datasource:  datasource,
		Environment: env,
		Layer:       pebble.Build(app.StartCommand(), env, port),
	}, nil
}

func (p *pass) datasource(ctx context.Context) (appconfig.Datasource, error) {
	cfg := p.engine.config
	if cfg.Relations == nil {
		return appconfig.Datasource{}, nil
	}

	relations, err := cfg.Relations.Relations(ctx, cfg.DatabaseRelation)
	if err != nil {
		return appconfig.Datasource{}, waitingError(MessageWaitingForRelation, fmt.Errorf("failed to read database relation: %w", err))
	}
	return appconfig.ResolveDatasource(relations, cfg.DatabaseName), nil
}

func (p *pass) classify(ctx context.Context) (javaapp.Application, error) {
	if !p.classified {
		p.app, p.appErr = javaapp.Detect(ctx, p.engine.config.Container)
		p.classified = true
	}
	return p.app, p.appErr
}

func (p *pass) startCommand(ctx context.Context) ([]string, error) {
	app, err := p.classify(ctx)
	if err != nil {
		return nil, err
	}
	return app.StartCommand(), nil
}

func (p *pass) quota(ctx context.Context) (memory.Quota, error) {
	cfg := p.engine.config
	quota, err := cfg.Oracle.Quota(ctx, cfg.Container.Name())
	if err != nil {
		return memory.Quota{}, fmt.Errorf("%w: %w", ErrQuotaUnavailable, err)
	}
	return quota, nil
}

// checkDriver warns when a datasource is configured but the application does
// not bundle the MySQL driver. It never fails the pass.
func (p *pass) checkDriver(ctx context.Context, app javaapp.Application) {
	found, err := app.HasLibrary(ctx, p.engine.config.Container, mysqlDriverPrefix)
	if err != nil {
		logging.Debug(engineSubsystem, "Could not inspect libraries of %s: %v", app, err)
		return
	}
	if !found {
		logging.Warn(engineSubsystem, "Database relation is active but %s does not bundle a %s jar", app, mysqlDriverPrefix)
	}
}
