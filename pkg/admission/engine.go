package admission

import (
	"context"

	"go.uber.org/zap"

	"github.com/telekom/k8s-podsec-admission/pkg/authorizer"
	"github.com/telekom/k8s-podsec-admission/pkg/metrics"
	"github.com/telekom/k8s-podsec-admission/pkg/policy"
	"github.com/telekom/k8s-podsec-admission/pkg/request"
)

// ReasonNoPolicyAuthorized is the denial reason when the candidate list is empty.
const ReasonNoPolicyAuthorized = "no policy authorized for identity"

// ReasonCancelled is the outcome reason when evaluation stops on context expiry.
const ReasonCancelled = "admission evaluation cancelled"

// Engine evaluates admission requests against the active policy snapshot.
// Evaluation is stateless per call: concurrent Admit calls share only the
// read-only snapshot and the authorization collaborator.
type Engine struct {
	provider *policy.Provider
	resolver *authorizer.Resolver
	log      *zap.SugaredLogger
}

// NewEngine creates an Engine serving snapshots from provider and candidate
// lists from resolver.
func NewEngine(provider *policy.Provider, resolver *authorizer.Resolver, log *zap.SugaredLogger) *Engine {
	return &Engine{provider: provider, resolver: resolver, log: log}
}

// Admit decides whether the request is permitted for the identity in the
// namespace. The returned error is non-nil only when the authorization
// collaborator could not be consulted; a denial is a valid Result, not an
// error. The whole evaluation runs against a single store snapshot, so a
// concurrent policy reload never produces a half-old half-new decision.
func (e *Engine) Admit(ctx context.Context, id authorizer.Identity, namespace string, req *request.PodSecurityRequest) (Result, error) {
	store := e.provider.Current()

	candidates, err := e.resolver.Resolve(ctx, store, id, namespace)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeCancelled, Reason: ReasonCancelled}, nil
		}
		return Result{}, err
	}

	metrics.CandidatePolicies.WithLabelValues(namespace).Observe(float64(len(candidates)))

	if len(candidates) == 0 {
		e.log.Infow("Denying request: no candidate policies",
			"identity", id.Name, "namespace", namespace, "pod", req.Subject())
		return Result{Outcome: OutcomeDenied, Reason: ReasonNoPolicyAuthorized}, nil
	}

	failures := make([]CandidateFailure, 0, len(candidates))
	for _, name := range candidates {
		if err := ctx.Err(); err != nil {
			return Result{Outcome: OutcomeCancelled, Reason: ReasonCancelled}, nil
		}

		pol, ok := store.Get(name)
		if !ok {
			// candidate vanished between resolution and lookup; treat as no
			// match rather than failing the whole evaluation
			failures = append(failures, CandidateFailure{Policy: name, Reasons: []string{"policy not found"}})
			continue
		}

		res := policy.Match(pol, req)
		if res.Allowed() {
			e.log.Infow("Admitting request",
				"identity", id.Name, "namespace", namespace, "pod", req.Subject(),
				"policy", name, "defaults", len(res.Defaults))
			return Result{
				Outcome:        OutcomeAdmitted,
				SelectedPolicy: name,
				Defaults:       res.Defaults,
			}, nil
		}
		failures = append(failures, CandidateFailure{Policy: name, Reasons: res.Reasons()})
	}

	result := Result{Outcome: OutcomeDenied, Failures: failures}
	e.log.Infow("Denying request: no candidate policy matched",
		"identity", id.Name, "namespace", namespace, "pod", req.Subject(),
		"candidates", len(candidates))
	return result, nil
}
