package events

import (
	"spring-boot-operator/internal/unit"
)

// EventType represents the type/severity of a Kubernetes Event.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events that may require attention.
	EventTypeWarning EventType = "Warning"
)

// EventReason represents the reason code for an event.
type EventReason string

// Unit status event reasons
const (
	// ReasonUnitActive indicates the layer was applied and the workload is running.
	ReasonUnitActive EventReason = "UnitActive"

	// ReasonUnitBlocked indicates a configuration problem that needs operator action.
	ReasonUnitBlocked EventReason = "UnitBlocked"

	// ReasonUnitWaiting indicates the unit waits for the workload or a relation.
	ReasonUnitWaiting EventReason = "UnitWaiting"
)

// EventData carries the values substituted into message templates.
type EventData struct {
	// Name is the application name.
	Name string

	// Message is the unit status message.
	Message string
}

// reasonFor maps a unit phase to its event reason. Phases without a reason
// do not produce events.
func reasonFor(phase unit.Phase) (EventReason, bool) {
	switch phase {
	case unit.PhaseActive:
		return ReasonUnitActive, true
	case unit.PhaseBlocked:
		return ReasonUnitBlocked, true
	case unit.PhaseWaiting:
		return ReasonUnitWaiting, true
	default:
		return "", false
	}
}

// getEventType returns the event type for a reason.
func getEventType(reason EventReason) EventType {
	if reason == ReasonUnitActive {
		return EventTypeNormal
	}
	return EventTypeWarning
}
