// Package integration routes triggers to the handlers that react to them.
//
// The routing table is an ordered list of routes built once at startup. Each
// route pairs a predicate over events with a handler:
//
//  1. the datasource adapter reacts to the database relation becoming ready
//     or broken with a full reconciliation pass;
//  2. the ingress adapter reacts to the ingress relation and to configuration
//     changes by publishing routing data for the ingress provider;
//  3. the core route reacts to configuration changes, workload readiness,
//     start and upgrade with a full reconciliation pass.
//
// An event matching several routes runs them in order. At most one full pass
// runs per event and the first non-success outcome is the result.
package integration
