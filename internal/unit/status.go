package unit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spring-boot-operator/pkg/logging"
)

// Phase is the kind of unit status.
type Phase string

const (
	PhaseUnknown     Phase = "unknown"
	PhaseMaintenance Phase = "maintenance"
	PhaseWaiting     Phase = "waiting"
	PhaseBlocked     Phase = "blocked"
	PhaseActive      Phase = "active"
)

// Status is the externally visible state of the unit.
type Status struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// Active is the status of a unit whose service is running as configured.
func Active() Status {
	return Status{Phase: PhaseActive}
}

// Blocked means the unit needs a configuration or image change.
func Blocked(message string) Status {
	return Status{Phase: PhaseBlocked, Message: message}
}

// Waiting means the unit waits for something that will change on its own.
func Waiting(message string) Status {
	return Status{Phase: PhaseWaiting, Message: message}
}

func Maintenance(message string) Status {
	return Status{Phase: PhaseMaintenance, Message: message}
}

func (s Status) String() string {
	if s.Message == "" {
		return string(s.Phase)
	}
	return fmt.Sprintf("%s: %s", s.Phase, s.Message)
}

// Sink publishes a status somewhere outside the process.
type Sink interface {
	SetStatus(ctx context.Context, status Status) error
}

// Recorder owns the unit status. Every SetStatus overwrites the previous
// value and is forwarded to all sinks; sink failures are logged, never
// returned, so a status write cannot fail a reconciliation pass.
type Recorder struct {
	mu      sync.RWMutex
	current Status
	updated time.Time
	sinks   []Sink
}

// NewRecorder creates a recorder forwarding to sinks.
func NewRecorder(sinks ...Sink) *Recorder {
	return &Recorder{
		current: Status{Phase: PhaseUnknown},
		sinks:   sinks,
	}
}

// SetStatus replaces the unit status.
func (r *Recorder) SetStatus(ctx context.Context, status Status) {
	r.mu.Lock()
	r.current = status
	r.updated = time.Now()
	sinks := r.sinks
	r.mu.Unlock()

	logging.Debug("UnitStatus", "Unit status set to %s", status)
	for _, sink := range sinks {
		if err := sink.SetStatus(ctx, status); err != nil {
			logging.Warn("UnitStatus", "Failed to publish unit status %s: %v", status, err)
		}
	}
}

// Current returns the last status set and when it was set.
func (r *Recorder) Current() (Status, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.updated
}
