package authorizer

import (
	"context"

	"go.uber.org/zap"

	"github.com/telekom/k8s-podsec-admission/pkg/policy"
)

// Resolver aggregates per-policy MayUse checks into the ordered candidate
// list the admission engine iterates. The order is the store's evaluation
// order (priority descending, then lexicographic by name); with no explicit
// priorities this degenerates to plain lexicographic order, which is the
// documented tie-break contract that keeps first-match-wins reproducible.
type Resolver struct {
	auth PolicyAuthorizer
	log  *zap.SugaredLogger
}

// NewResolver creates a Resolver delegating binding checks to auth.
func NewResolver(auth PolicyAuthorizer, log *zap.SugaredLogger) *Resolver {
	return &Resolver{auth: auth, log: log}
}

// Resolve returns the names of every policy in the store that the identity
// may use, in evaluation order. An empty result is a valid answer meaning
// "no policy usable". A failed binding check aborts resolution with an
// AuthorizationError; it is never treated as "not authorized".
func (r *Resolver) Resolve(ctx context.Context, store *policy.Store, id Identity, namespace string) ([]string, error) {
	var candidates []string
	for _, p := range store.Ordered() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		allowed, err := r.auth.MayUse(ctx, id, p.Name, namespace)
		if err != nil {
			return nil, &AuthorizationError{Identity: id.Name, Policy: p.Name, Err: err}
		}
		if allowed {
			candidates = append(candidates, p.Name)
		}
	}
	r.log.Debugw("Resolved candidate policies",
		"identity", id.Name, "namespace", namespace, "candidates", candidates)
	return candidates, nil
}
