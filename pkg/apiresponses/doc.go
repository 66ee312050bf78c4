// Package apiresponses provides standardized JSON error responses for the
// non-webhook API surface, so every endpoint reports failures in the same
// shape.
package apiresponses
