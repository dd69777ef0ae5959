// Package unit models the externally visible status of the unit.
//
// The reconciliation engine is the only writer. A Recorder keeps the latest
// status in memory and forwards each write to its sinks, for example
// PodAnnotationSink, which mirrors it onto the unit's pod.
package unit
