// Package memory parses human readable memory quantities and reads container
// memory limits from the pod specification.
//
// The same parser handles JVM heap flags ("-Xmx512m") and Kubernetes limits
// ("2Gi", with the trailing "i" dropped), so heap sizes and quotas are always
// compared in the same unit.
package memory
