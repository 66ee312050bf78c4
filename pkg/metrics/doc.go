// Package metrics exposes Prometheus counters for the admission engine and
// its webhook surface.
package metrics
