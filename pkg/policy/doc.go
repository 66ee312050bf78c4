// Package policy holds the compiled pod security policy set and evaluates
// pod security requests against individual policies. The store is immutable
// once built; reloads swap in a complete replacement so in-flight admission
// evaluations always see a consistent policy set.
package policy
