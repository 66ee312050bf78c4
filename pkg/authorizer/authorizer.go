package authorizer

import (
	"context"
	"fmt"
)

// PolicyAuthorizer answers whether an identity is bound to a policy, either
// cluster-wide or in the given namespace. Implementations must distinguish
// "not authorized" from "could not check": a failed check is an error, never
// a silent false, since conflating the two turns outages into authorization
// decisions.
type PolicyAuthorizer interface {
	MayUse(ctx context.Context, id Identity, policyName, namespace string) (bool, error)
}

// AuthorizationError wraps a failed MayUse check. It is surfaced to the
// admission caller as a distinguished failure; the caller owns any retry.
type AuthorizationError struct {
	Identity string
	Policy   string
	Err      error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization check for identity %q on policy %q failed: %v", e.Identity, e.Policy, e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// StaticAuthorizer is an in-memory PolicyAuthorizer for tests and local
// tooling. Bindings map an identity name or group to the policy names it
// may use; an entry of "*" authorizes every policy.
type StaticAuthorizer struct {
	bindings map[string][]string
}

// NewStaticAuthorizer creates a StaticAuthorizer from subject -> policy
// names bindings. Subjects are matched against the identity name and each
// of its groups.
func NewStaticAuthorizer(bindings map[string][]string) *StaticAuthorizer {
	return &StaticAuthorizer{bindings: bindings}
}

// MayUse implements PolicyAuthorizer.
func (a *StaticAuthorizer) MayUse(_ context.Context, id Identity, policyName, _ string) (bool, error) {
	subjects := append([]string{id.Name}, id.Groups...)
	for _, subject := range subjects {
		for _, allowed := range a.bindings[subject] {
			if allowed == policyName || allowed == "*" {
				return true, nil
			}
		}
	}
	return false, nil
}
