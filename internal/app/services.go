package app

import (
	"context"
	"fmt"
	"path/filepath"

	"spring-boot-operator/internal/config"
	"spring-boot-operator/internal/events"
	"spring-boot-operator/internal/integration"
	"spring-boot-operator/internal/memory"
	"spring-boot-operator/internal/pebble"
	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/internal/relation"
	"spring-boot-operator/internal/unit"
	"spring-boot-operator/internal/workload"
	"spring-boot-operator/pkg/logging"
)

// Services holds all initialized components of the operator.
//
// The components are created in dependency order:
//  1. Collaborators of the workload: supervisor client, container, quota oracle
//  2. Relation store and unit status recorder with its sinks
//  3. Reconciliation engine and the routing table of the adapters
//  4. Change detectors and the manager driving everything
type Services struct {
	// Supervisor is the Pebble client of the workload container
	Supervisor *pebble.Client

	// Container inspects the workload container
	Container workload.Container

	// Store exchanges relation data with the providers
	Store *relation.KubeStore

	// Recorder owns the unit status
	Recorder *unit.Recorder

	// Engine runs reconciliation passes
	Engine *reconciler.Engine

	// Table routes events to the engine and the adapters
	Table *integration.Table

	// Manager runs the event loop
	Manager *reconciler.Manager

	// PollSupervisor is set when no pod readiness events are available, so
	// readiness of the supervisor is polled instead
	PollSupervisor bool
}

// optionsSource reloads the charm options from config.yaml on every call.
func optionsSource(configPath string) reconciler.OptionsFunc {
	return func(ctx context.Context) (config.Options, error) {
		return config.LoadOptions(configPath)
	}
}

// InitializeServices creates and wires all components of the operator.
func InitializeServices(cfg *Config, clients *Clients) (*Services, error) {
	op := cfg.Operator
	if op == nil {
		return nil, fmt.Errorf("operator configuration not loaded")
	}
	if op.Unit.PodName == "" || op.Unit.Namespace == "" {
		return nil, fmt.Errorf("unit.podName and unit.namespace are required to run (set %s and %s)",
			config.EnvPodName, config.EnvPodNamespace)
	}
	if op.Pebble.Socket == "" {
		return nil, fmt.Errorf("pebble.socket is required to run")
	}

	// Step 1: workload collaborators
	supervisor, err := pebble.NewClient(op.Pebble.Socket)
	if err != nil {
		return nil, err
	}

	var container workload.Container
	pollSupervisor := false
	if op.Unit.Root != "" {
		container = workload.NewLocalContainer(op.Unit.Container, op.Unit.Root).
			WithReadiness(supervisor.Ping)
		pollSupervisor = true
		logging.Info("Services", "Inspecting workload through local root %s", op.Unit.Root)
	} else {
		container = workload.NewKubeContainer(clients.RestConfig, clients.Kube, op.Unit.Namespace, op.Unit.PodName, op.Unit.Container).
			WithReadiness(supervisor.Ping)
	}

	oracle := memory.NewPodQuota(clients.Kube, op.Unit.Namespace, op.Unit.PodName)

	// Step 2: relation transport and unit status
	store := relation.NewKubeStore(clients.Client, op.Unit.Namespace, op.Relations.LabelKey, op.Unit.AppName)
	recorder := unit.NewRecorder(
		unit.NewPodAnnotationSink(clients.Client, op.Unit.Namespace, op.Unit.PodName),
		events.NewEventGenerator(clients.Client, op.Unit.Namespace, op.Unit.PodName, op.Unit.AppName),
	)

	// Step 3: engine and routing table
	options := optionsSource(cfg.ConfigPath)
	engine := reconciler.NewEngine(reconciler.EngineConfig{
		Container:        container,
		Supervisor:       supervisor,
		Oracle:           oracle,
		Status:           recorder,
		Options:          options,
		Relations:        store,
		DatabaseRelation: op.Database.Relation,
		DatabaseName:     op.Database.Name,
	})

	ingress := integration.NewIngress(integration.IngressConfig{
		Relation:  op.Ingress.Relation,
		AppName:   op.Unit.AppName,
		ConfigMap: op.IngressConfigMapName(),
		Reader:    store,
		Publisher: store,
		Options:   options,
	})
	table := integration.DefaultTable(engine, integration.NewDatasource(op.Database.Relation, engine), ingress)

	// Step 4: detectors and manager
	detectors := []reconciler.ChangeDetector{
		reconciler.NewFilesystemDetector(cfg.ConfigPath, filepath.Base(config.ConfigFile(cfg.ConfigPath)), op.Reconcile.DebounceInterval),
		reconciler.NewKubernetesDetector(clients.RestConfig, reconciler.KubernetesDetectorConfig{
			Namespace:     op.Unit.Namespace,
			PodName:       op.Unit.PodName,
			ContainerName: op.Unit.Container,
			LabelKey:      op.Relations.LabelKey,
			Relations:     []string{op.Database.Relation, op.Ingress.Relation},
		}),
	}

	manager := reconciler.NewManager(reconciler.ManagerConfig{
		InitialBackoff:   op.Reconcile.InitialBackoff,
		MaxBackoff:       op.Reconcile.MaxBackoff,
		ReconcileTimeout: op.Reconcile.Timeout,
	}, table, detectors...)

	return &Services{
		Supervisor:     supervisor,
		Container:      container,
		Store:          store,
		Recorder:       recorder,
		Engine:         engine,
		Table:          table,
		Manager:        manager,
		PollSupervisor: pollSupervisor,
	}, nil
}
