// Package logging provides the structured logging used across the operator.
//
// It is a thin layer over Go's slog package with a subsystem attribute on every
// entry, so output from the reconciliation engine, the detectors and the
// integration adapters can be filtered independently.
//
// # Log Levels
//   - Debug: per-step detail of a reconciliation pass
//   - Info: outcome of each pass, detector lifecycle
//   - Warn: recoverable conditions (deferred triggers, missing drivers)
//   - Error: failures that block the unit
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stderr)
//
//	logging.Info("Engine", "Reconciliation finished with %s", outcome)
//	logging.Error("QuotaOracle", err, "Failed to read pod %s", podName)
//
// Init also installs a logr bridge with ctrl.SetLogger, so controller-runtime
// and client-go log through the same handler.
//
// Secrets must be passed through Redact before they reach a log call.
package logging
