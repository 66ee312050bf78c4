// Package config loads the admission controller's file-based configuration
// and reconciles PodSecurityPolicy resources into the active policy store.
package config
