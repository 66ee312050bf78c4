package admission

import (
	"fmt"
	"strings"

	"github.com/telekom/k8s-podsec-admission/pkg/policy"
)

// SelectedPolicyAnnotation is attached to admitted objects to record which
// policy admitted them. The engine only emits the fact; persisting it is the
// object store's concern.
const SelectedPolicyAnnotation = "podsecurity.t-caas.telekom.com/selected-policy"

// Outcome is the terminal state of one admission evaluation.
type Outcome string

const (
	// OutcomeAdmitted means a candidate policy accepted the request.
	OutcomeAdmitted Outcome = "Admitted"
	// OutcomeDenied means no candidate policy accepted the request.
	OutcomeDenied Outcome = "Denied"
	// OutcomeCancelled means the caller's context expired mid-evaluation.
	// It is distinct from Denied so a cancelled partial evaluation is never
	// mistaken for a considered rejection.
	OutcomeCancelled Outcome = "Cancelled"
)

// CandidateFailure records why one candidate policy rejected the request.
type CandidateFailure struct {
	Policy  string   `json:"policy"`
	Reasons []string `json:"reasons"`
}

// Result is the outcome of one evaluation. It is constructed fresh per
// request and never persisted by the engine.
type Result struct {
	Outcome        Outcome            `json:"outcome"`
	SelectedPolicy string             `json:"selectedPolicy,omitempty"`
	Defaults       []policy.Default   `json:"defaults,omitempty"`
	Failures       []CandidateFailure `json:"failures,omitempty"`
	Reason         string             `json:"reason,omitempty"`
}

// Admitted reports whether the request was accepted.
func (r Result) Admitted() bool {
	return r.Outcome == OutcomeAdmitted
}

// Annotations returns the metadata facts the persistence collaborator
// should attach to the admitted object. Empty unless admitted.
func (r Result) Annotations() map[string]string {
	if !r.Admitted() {
		return nil
	}
	return map[string]string{SelectedPolicyAnnotation: r.SelectedPolicy}
}

// Message renders a single diagnostic line: the selected policy on
// admission, or every candidate's failure reasons on denial.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeAdmitted:
		return fmt.Sprintf("admitted by policy %q", r.SelectedPolicy)
	case OutcomeCancelled:
		return r.Reason
	}
	if len(r.Failures) == 0 {
		return r.Reason
	}
	parts := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		parts = append(parts, fmt.Sprintf("%s: [%s]", f.Policy, strings.Join(f.Reasons, ", ")))
	}
	return fmt.Sprintf("unable to admit pod under any candidate policy: %s", strings.Join(parts, "; "))
}
