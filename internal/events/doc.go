// Package events records Kubernetes Events for unit status changes, so
// `kubectl get events` and `kubectl describe pod` show why a unit is blocked
// or waiting.
//
// EventGenerator is a unit.Sink; it is registered with the unit.Recorder next
// to the pod annotation sink. Messages come from per-reason templates:
//
//	generator := events.NewEventGenerator(c, "apps", "shop-0", "shop")
//	recorder := unit.NewRecorder(annotations, generator)
package events
