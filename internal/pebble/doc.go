// Package pebble builds the supervisor layer for the Spring Boot service and
// applies it through the upstream Pebble client.
//
// Build is pure: the same command, environment and port always produce the
// same layer, and Pebble replaces entries by name, so re-applying a layer is a
// no-op. Client wraps the calls the operator needs (adding a layer,
// replanning, reading the plan back) behind context-aware methods.
package pebble
