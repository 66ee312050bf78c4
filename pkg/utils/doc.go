// Package utils holds small helpers shared across controllers, currently
// conflict-aware retry wrappers around client status updates.
package utils
