// Package audit records admission decisions to configurable sinks (log,
// Kafka) with queued delivery, so every accept and deny is traceable after
// the fact without slowing down the admission critical path.
package audit
