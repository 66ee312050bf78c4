// Package api provides the HTTP server hosting the admission review
// endpoint, health probes, the version endpoint and Prometheus metrics.
package api
