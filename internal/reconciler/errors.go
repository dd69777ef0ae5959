package reconciler

import (
	"errors"
	"fmt"

	"spring-boot-operator/internal/appconfig"
	"spring-boot-operator/internal/javaapp"
	"spring-boot-operator/internal/memory"
	"spring-boot-operator/internal/unit"
	"spring-boot-operator/pkg/logging"
)

// Status messages shown to the operator of the unit.
const (
	MessageStart              = "Start reconciliation process"
	MessageWaitingForPebble   = "Waiting for pebble"
	MessageConfigSyntax       = "Invalid application-config value, expecting JSON"
	MessageConfigShape        = "Invalid application-config value, expecting an object in JSON"
	MessagePort               = "Invalid application-config value, server.port must be a positive integer"
	MessageMemoryUnit         = "Invalid jvm-config, unknown memory unit"
	MessageHeapExceedsQuota   = "Invalid jvm-config, Java heap memory specification exceeds application memory constraint"
	MessageJVMConfig          = "Invalid jvm-config"
	MessageNoJar              = "No jar file found in /app"
	MessageMultipleJars       = "Multiple jar files found in /app"
	MessageUnknownApplication = "Unknown Java application type"
	MessageQuotaUnavailable   = "Failed to read memory constraint"
	MessageOptionsUnreadable  = "Failed to read charm configuration"
	MessageWaitingForRelation = "Waiting for database relation data"
)

// ErrQuotaUnavailable wraps failures of the memory quota oracle.
var ErrQuotaUnavailable = errors.New("memory quota unavailable")

// Error is the failure of a reconciliation step. It carries the unit status to
// set and whether the triggering event should be deferred.
type Error struct {
	Status unit.Status
	Defer  bool
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %v", e.Status, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome converts e to the outcome of the pass.
func (e *Error) Outcome() Outcome {
	switch e.Status.Phase {
	case unit.PhaseBlocked:
		return Blocked(e.Status.Message)
	case unit.PhaseWaiting:
		return Waiting(e.Status.Message, e.Defer)
	default:
		return Success()
	}
}

// blockedError returns an Error that blocks the unit with message.
func blockedError(message string, err error) *Error {
	return &Error{Status: unit.Blocked(message), Err: err}
}

// waitingError returns an Error that defers the event.
func waitingError(message string, err error) *Error {
	return &Error{Status: unit.Waiting(message), Defer: true, Err: err}
}

// AsError maps any step failure to an Error. Sentinel errors of the resolver
// and classifier map to their status messages. Anything else is treated as
// lost contact with the workload and deferred.
func AsError(err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}

	// Oracle failures may wrap resolver sentinels, so they are matched first.
	switch {
	case errors.Is(err, ErrQuotaUnavailable):
		logging.Error("Engine", err, "Memory quota oracle failed for a reachable container")
		return blockedError(MessageQuotaUnavailable, err)
	case errors.Is(err, appconfig.ErrInvalidConfigSyntax):
		return blockedError(MessageConfigSyntax, err)
	case errors.Is(err, appconfig.ErrInvalidConfigShape):
		return blockedError(MessageConfigShape, err)
	case errors.Is(err, appconfig.ErrInvalidPortValue):
		return blockedError(MessagePort, err)
	case errors.Is(err, memory.ErrInvalidMemoryUnit):
		return blockedError(MessageMemoryUnit, err)
	case errors.Is(err, appconfig.ErrHeapExceedsQuota):
		return blockedError(MessageHeapExceedsQuota, err)
	case errors.Is(err, appconfig.ErrInvalidJVMConfig):
		return blockedError(MessageJVMConfig, err)
	case errors.Is(err, javaapp.ErrNoExecutableFound):
		return blockedError(MessageNoJar, err)
	case errors.Is(err, javaapp.ErrAmbiguousExecutable):
		return blockedError(MessageMultipleJars, err)
	case errors.Is(err, javaapp.ErrUnknownApplicationType):
		return blockedError(MessageUnknownApplication, err)
	default:
		return waitingError(MessageWaitingForPebble, err)
	}
}
