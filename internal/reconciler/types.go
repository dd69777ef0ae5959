package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spring-boot-operator/internal/unit"
)

// EventKind is the kind of trigger that starts a reconciliation pass.
type EventKind string

const (
	// EventConfigChanged fires when the options in config.yaml change.
	EventConfigChanged EventKind = "config-changed"

	// EventWorkloadReady fires when the workload container becomes ready.
	EventWorkloadReady EventKind = "workload-ready"

	// EventStart fires once when the operator starts.
	EventStart EventKind = "start"

	// EventUpgrade fires when the operator starts with a new version.
	EventUpgrade EventKind = "upgrade"

	// EventRelationReady fires when a related unit publishes or updates data.
	EventRelationReady EventKind = "relation-ready"

	// EventRelationBroken fires when a related unit goes away.
	EventRelationBroken EventKind = "relation-broken"
)

// EventSource indicates where an event originated.
type EventSource string

const (
	// SourceFilesystem indicates the event came from watching the config directory.
	SourceFilesystem EventSource = "Filesystem"

	// SourceKubernetes indicates the event came from Kubernetes informers.
	SourceKubernetes EventSource = "Kubernetes"

	// SourceManual indicates the event was triggered directly (startup, CLI).
	SourceManual EventSource = "Manual"
)

// Event is one trigger observed by a detector.
type Event struct {
	// ID identifies this delivery in logs. Deferred events keep their ID.
	ID string

	// Kind is the kind of trigger.
	Kind EventKind

	// Relation is the relation name for relation events.
	Relation string

	// Source indicates where the event came from.
	Source EventSource

	// Timestamp is when the event was detected.
	Timestamp time.Time

	// Attempt is the delivery attempt, starting at 1.
	Attempt int
}

// NewEvent creates a first delivery of an event.
func NewEvent(kind EventKind, relation string, source EventSource) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Relation:  relation,
		Source:    source,
		Timestamp: time.Now(),
		Attempt:   1,
	}
}

// Name returns the conventional event name, such as "config-changed",
// "mysql_client-ready" or "nginx_ingress-relation-broken".
func (e Event) Name() string {
	switch e.Kind {
	case EventRelationReady:
		return e.Relation + "-ready"
	case EventRelationBroken:
		return e.Relation + "-relation-broken"
	default:
		return string(e.Kind)
	}
}

// IsRelation reports whether e is a ready or broken event of relation.
func (e Event) IsRelation(relation string) bool {
	return e.Relation == relation && (e.Kind == EventRelationReady || e.Kind == EventRelationBroken)
}

func (e Event) String() string {
	return fmt.Sprintf("%s (%s, attempt %d)", e.Name(), e.ID, e.Attempt)
}

// OutcomeKind is the terminal state of a reconciliation pass.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeBlocked
	OutcomeWaiting
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "Success"
	case OutcomeBlocked:
		return "Blocked"
	case OutcomeWaiting:
		return "Waiting"
	default:
		return "Unknown"
	}
}

// Outcome is the result of handling an event.
type Outcome struct {
	Kind   OutcomeKind
	Reason string

	// Retry asks for the same event to be delivered again later.
	Retry bool
}

// Success is the outcome of a pass that applied the layer.
func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

// Blocked is the outcome of a pass that cannot succeed without new input.
func Blocked(reason string) Outcome {
	return Outcome{Kind: OutcomeBlocked, Reason: reason}
}

// Waiting is the outcome of a pass that waits for a condition to change.
func Waiting(reason string, retry bool) Outcome {
	return Outcome{Kind: OutcomeWaiting, Reason: reason, Retry: retry}
}

// IsSuccess reports whether o is Success.
func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// Status returns the unit status that represents o.
func (o Outcome) Status() unit.Status {
	switch o.Kind {
	case OutcomeBlocked:
		return unit.Blocked(o.Reason)
	case OutcomeWaiting:
		return unit.Waiting(o.Reason)
	default:
		return unit.Active()
	}
}

func (o Outcome) String() string {
	switch {
	case o.Reason == "":
		return o.Kind.String()
	case o.Retry:
		return fmt.Sprintf("%s(%q, retry)", o.Kind, o.Reason)
	default:
		return fmt.Sprintf("%s(%q)", o.Kind, o.Reason)
	}
}

// Handler reacts to an event.
type Handler interface {
	Handle(ctx context.Context, event Event) Outcome
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) Outcome

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event Event) Outcome {
	return f(ctx, event)
}

// Dispatcher routes an event to every handler interested in it.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) Outcome
}

// ChangeDetector is the interface for components that observe triggers.
//
// Different implementations exist for the config directory and for
// Kubernetes objects.
type ChangeDetector interface {
	// Start begins watching. Events are sent to the provided channel.
	Start(ctx context.Context, events chan<- Event) error

	// Stop gracefully stops the detector.
	Stop() error

	// GetSource returns the source type this detector monitors.
	GetSource() EventSource
}

// ReconcileQueue represents a queue of events awaiting handling.
type ReconcileQueue interface {
	// Add adds an event to the queue.
	// If an event with the same name is already queued, it is replaced.
	Add(event Event)

	// Get retrieves the next event from the queue.
	// Blocks until an event is available or the context is cancelled.
	Get(ctx context.Context) (Event, bool)

	// Done marks an event as processed.
	Done(event Event)

	// Len returns the current queue length.
	Len() int

	// Shutdown signals the queue to stop accepting new items.
	Shutdown()
}

// ManagerConfig holds configuration for the Manager.
type ManagerConfig struct {
	// InitialBackoff is the delay before the first re-delivery of a deferred event.
	// Defaults to 1 second if not specified.
	InitialBackoff time.Duration

	// MaxBackoff caps the re-delivery delay.
	// Defaults to 5 minutes if not specified.
	MaxBackoff time.Duration

	// MaxRetries bounds re-deliveries of a deferred event. Zero means no bound.
	MaxRetries int

	// ReconcileTimeout bounds a single dispatch. It must exceed the JVM dry
	// run timeout. Defaults to 2 minutes if not specified.
	ReconcileTimeout time.Duration
}

// TriggerStatus is the last known handling state of one event name.
type TriggerStatus struct {
	// Trigger is the event name.
	Trigger string

	// LastEventID is the ID of the last delivery.
	LastEventID string

	// LastReconcileTime is when the trigger was last handled.
	LastReconcileTime *time.Time

	// LastOutcome is the outcome of the last delivery.
	LastOutcome string

	// RetryCount is the number of deferrals since the last terminal outcome.
	RetryCount int

	// State describes the current handling state.
	State TriggerState
}

// TriggerState represents the handling state of a trigger.
type TriggerState string

const (
	// StatePending means the event is queued.
	StatePending TriggerState = "Pending"

	// StateReconciling means the event is being handled.
	StateReconciling TriggerState = "Reconciling"

	// StateSynced means the last delivery succeeded.
	StateSynced TriggerState = "Synced"

	// StateDeferred means the event will be delivered again.
	StateDeferred TriggerState = "Deferred"

	// StateBlocked means the last delivery ended blocked or waiting without retry.
	StateBlocked TriggerState = "Blocked"

	// StateFailed means re-deliveries were exhausted.
	StateFailed TriggerState = "Failed"
)
