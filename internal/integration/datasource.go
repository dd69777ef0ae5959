package integration

import (
	"context"

	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/pkg/logging"
)

// Datasource reacts to the database relation. The relation data itself is
// read by the engine on every pass, so a change of the relation only needs a
// new pass.
type Datasource struct {
	relation string
	engine   reconciler.Handler
}

// NewDatasource creates the adapter for the database relation.
func NewDatasource(relation string, engine reconciler.Handler) *Datasource {
	return &Datasource{relation: relation, engine: engine}
}

// Handle implements reconciler.Handler.
func (d *Datasource) Handle(ctx context.Context, event reconciler.Event) reconciler.Outcome {
	switch event.Kind {
	case reconciler.EventRelationBroken:
		logging.Info("DatasourceAdapter", "Database relation %s removed, dropping datasource", d.relation)
	default:
		logging.Info("DatasourceAdapter", "Database relation %s changed", d.relation)
	}
	return d.engine.Handle(ctx, event)
}

// Route returns the routing table entry of the adapter.
func (d *Datasource) Route() Route {
	return Route{
		Name: "datasource",
		Matches: func(event reconciler.Event) bool {
			return event.IsRelation(d.relation)
		},
		Handler:    d,
		Reconciles: true,
	}
}
