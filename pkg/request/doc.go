// Package request projects a pod spec down to its security-sensitive fields.
// The projection is computed once per admission attempt and never mutated
// during evaluation, so concurrent policy checks can share it freely.
package request
