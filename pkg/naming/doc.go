// Package naming validates the identifiers the admission controller exposes
// to Kubernetes, most importantly policy names, which end up in RBAC
// resourceNames and object annotations.
package naming
