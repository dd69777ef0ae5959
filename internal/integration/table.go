package integration

import (
	"context"

	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/pkg/logging"
)

const subsystem = "Dispatch"

// Route pairs a predicate with the handler it selects.
type Route struct {
	Name    string
	Matches func(event reconciler.Event) bool
	Handler reconciler.Handler

	// Reconciles marks handlers that run a full reconciliation pass.
	Reconciles bool
}

// Table is an ordered routing table. It implements reconciler.Dispatcher.
type Table struct {
	routes []Route
}

var _ reconciler.Dispatcher = (*Table)(nil)

// NewTable creates a table evaluating routes in the given order.
func NewTable(routes ...Route) *Table {
	return &Table{routes: append([]Route(nil), routes...)}
}

// Routes returns the routes in evaluation order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Match returns the names of the routes that would handle event.
func (t *Table) Match(event reconciler.Event) []string {
	var names []string
	reconciled := false
	for _, route := range t.routes {
		if !route.Matches(event) {
			continue
		}
		if route.Reconciles {
			if reconciled {
				continue
			}
			reconciled = true
		}
		names = append(names, route.Name)
	}
	return names
}

// Dispatch runs every matching route in order.
func (t *Table) Dispatch(ctx context.Context, event reconciler.Event) reconciler.Outcome {
	result := reconciler.Success()
	reconciled := false
	matched := 0

	for _, route := range t.routes {
		if !route.Matches(event) {
			continue
		}
		if route.Reconciles && reconciled {
			logging.Debug(subsystem, "Skipping %s for %s, already reconciled", route.Name, event.Name())
			continue
		}

		matched++
		outcome := route.Handler.Handle(ctx, event)
		if route.Reconciles {
			reconciled = true
		}
		logging.Debug(subsystem, "Route %s handled %s: %s", route.Name, event.Name(), outcome)

		if result.IsSuccess() && !outcome.IsSuccess() {
			result = outcome
		}
	}

	if matched == 0 {
		logging.Debug(subsystem, "No route for %s", event.Name())
	}
	return result
}

// Core returns the route running a full pass on lifecycle and configuration
// triggers.
func Core(engine reconciler.Handler) Route {
	return Route{
		Name: "core",
		Matches: func(event reconciler.Event) bool {
			switch event.Kind {
			case reconciler.EventConfigChanged, reconciler.EventWorkloadReady,
				reconciler.EventStart, reconciler.EventUpgrade:
				return true
			default:
				return false
			}
		},
		Handler:    engine,
		Reconciles: true,
	}
}

// DefaultTable builds the routing table of the operator.
func DefaultTable(engine reconciler.Handler, datasource *Datasource, ingress *Ingress) *Table {
	return NewTable(
		datasource.Route(),
		ingress.Route(),
		Core(engine),
	)
}
