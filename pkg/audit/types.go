package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telekom/k8s-podsec-admission/pkg/admission"
)

// EventType classifies an audit event.
type EventType string

const (
	// EventDecisionAdmitted records an accepted admission request.
	EventDecisionAdmitted EventType = "decision.admitted"
	// EventDecisionDenied records a rejected admission request.
	EventDecisionDenied EventType = "decision.denied"
	// EventDecisionCancelled records an evaluation aborted by the caller.
	EventDecisionCancelled EventType = "decision.cancelled"
	// EventDecisionError records an evaluation that failed on the
	// authorization collaborator.
	EventDecisionError EventType = "decision.error"
	// EventPolicyReloaded records a policy store swap.
	EventPolicyReloaded EventType = "policy.reloaded"
)

// Actor identifies the principal whose request was evaluated.
type Actor struct {
	User   string   `json:"user"`
	Groups []string `json:"groups,omitempty"`
}

// Target identifies the pod the decision applies to.
type Target struct {
	Namespace string `json:"namespace"`
	Pod       string `json:"pod,omitempty"`
}

// Event is one audit record. Events are immutable once created.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Actor     Actor     `json:"actor"`
	Target    Target    `json:"target"`

	// SelectedPolicy is set on admitted decisions.
	SelectedPolicy string `json:"selectedPolicy,omitempty"`
	// Failures carries the per-candidate rejection reasons on denials.
	Failures []admission.CandidateFailure `json:"failures,omitempty"`
	// Reason carries the summary reason for denials, cancellations and errors.
	Reason string `json:"reason,omitempty"`
}

// NewDecisionEvent builds an audit event from an admission result.
func NewDecisionEvent(actor Actor, target Target, result admission.Result) *Event {
	e := &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Target:    target,
	}
	switch result.Outcome {
	case admission.OutcomeAdmitted:
		e.Type = EventDecisionAdmitted
		e.SelectedPolicy = result.SelectedPolicy
	case admission.OutcomeCancelled:
		e.Type = EventDecisionCancelled
		e.Reason = result.Reason
	default:
		e.Type = EventDecisionDenied
		e.Failures = result.Failures
		e.Reason = result.Reason
	}
	return e
}

// NewPolicyReloadEvent records that a new store snapshot was swapped in.
func NewPolicyReloadEvent(count int) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      EventPolicyReloaded,
		Timestamp: time.Now().UTC(),
		Reason:    fmt.Sprintf("policy store reloaded with %d policies", count),
	}
}

// NewErrorEvent builds an audit event for an evaluation that failed before
// reaching a decision.
func NewErrorEvent(actor Actor, target Target, err error) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      EventDecisionError,
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Target:    target,
		Reason:    err.Error(),
	}
}
