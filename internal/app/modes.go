package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/pkg/logging"
)

// supervisorPollInterval is how often the supervisor is pinged when pod
// readiness events are not available.
const supervisorPollInterval = 5 * time.Second

// runOperator runs the event loop until ctx is cancelled or SIGINT/SIGTERM
// arrives.
//
// Startup sequence:
//  1. Start the manager and its detectors
//  2. Trigger start, or upgrade when the recorded version differs
//  3. Poll the supervisor when running against a local root
//
// Shutdown stops the detectors, drains the worker and logs the metrics summary.
func runOperator(ctx context.Context, cfg *Config, clients *Clients, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("Operator", "Starting reconciliation manager for %s", cfg.Operator.Unit.AppName)
	if err := services.Manager.Start(ctx); err != nil {
		logging.Error("Operator", err, "Failed to start reconciliation manager")
		return err
	}

	kind, err := StartupEvent(ctx, clients.Client, cfg.Operator.Unit.Namespace, cfg.Operator.Unit.AppName, cfg.Version)
	if err != nil {
		logging.Warn("Operator", "Could not determine upgrade state, treating as start: %v", err)
	}
	services.Manager.Trigger(kind, "")

	g, gctx := errgroup.WithContext(ctx)

	if services.PollSupervisor {
		g.Go(func() error {
			watchSupervisor(gctx, services.Supervisor, services.Manager, supervisorPollInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Operator", "Shutting down reconciliation manager")
		return services.Manager.Stop()
	})

	return g.Wait()
}

// pinger is the part of the supervisor client the readiness poller uses.
type pinger interface {
	Ping(ctx context.Context) error
}

// triggerer receives workload-ready triggers.
type triggerer interface {
	Trigger(kind reconciler.EventKind, relation string)
}

// watchSupervisor pings the supervisor every interval and triggers
// workload-ready whenever it goes from unreachable to reachable.
func watchSupervisor(ctx context.Context, supervisor pinger, manager triggerer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	reachable := supervisor.Ping(ctx) == nil
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := supervisor.Ping(ctx)
			if err == nil && !reachable {
				logging.Info("Operator", "Supervisor became reachable")
				manager.Trigger(reconciler.EventWorkloadReady, "")
			}
			if err != nil && reachable {
				logging.Debug("Operator", "Supervisor unreachable: %v", err)
			}
			reachable = err == nil
		}
	}
}
