// Package reconciler turns triggers into reconciliation passes over the
// workload.
//
// # Overview
//
// Every trigger (config-changed, workload-ready, start, upgrade and the ready
// and broken events of a relation) runs the same idempotent pass: classify the
// application, resolve the application and JVM configuration, check the heap
// against the container memory limit, build the supervisor layer and apply it.
// The outcome of a pass is Success, Blocked or Waiting and is mirrored to the
// unit status.
//
// # Architecture
//
//   - Engine: runs a single pass and writes the unit status
//   - Manager: single-worker loop that dispatches events and re-delivers
//     deferred ones with exponential backoff
//   - ChangeDetector: observes triggers (FilesystemDetector for the config
//     file, KubernetesDetector for relation Secrets and the unit's pod)
//   - Dispatcher: routes an event to the handlers interested in it
//
// # Usage
//
//	engine := reconciler.NewEngine(engineConfig)
//	manager := reconciler.NewManager(managerConfig, dispatcher, detectors...)
//	if err := manager.Start(ctx); err != nil {
//	    return fmt.Errorf("failed to start reconciliation: %w", err)
//	}
//	defer manager.Stop()
//	manager.Trigger(reconciler.EventStart, "")
//
// # Failure Handling
//
// Step failures are mapped by AsError to an Error carrying the unit status and
// a defer flag. Invalid configuration blocks the unit until the next trigger.
// An unreachable workload container puts the unit in Waiting and the event is
// delivered again later.
package reconciler
