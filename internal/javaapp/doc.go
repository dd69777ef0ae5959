// Package javaapp detects how a Spring Boot application is packaged inside the
// workload container and knows how to start it.
//
// Two conventions are supported: a single executable jar in /app, and the
// expanded layout produced by Paketo buildpacks under /workspace.
package javaapp
