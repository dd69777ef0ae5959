// Package app bootstraps the operator: it loads the configuration, creates
// the Kubernetes clients, wires the services and runs them.
//
// Wiring order (see InitializeServices):
//  1. Pebble client, workload container and pod quota oracle
//  2. Relation store and the unit status recorder with its pod annotation sink
//  3. Reconciliation engine and the integration routing table
//  4. Filesystem and Kubernetes change detectors feeding the manager
//
// Run starts the manager and triggers start, or upgrade when the version
// recorded in the state ConfigMap differs from the running one. ReconcileOnce
// dispatches a single event through the routing table without detectors.
package app
