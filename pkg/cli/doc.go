// Package cli parses the admission controller's command-line flags, with
// environment variable fallbacks for container deployments.
package cli
