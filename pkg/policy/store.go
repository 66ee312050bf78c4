package policy

import (
	"fmt"
	"sort"
	"sync/atomic"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
	"github.com/telekom/k8s-podsec-admission/pkg/naming"
)

// Store is an immutable snapshot of the compiled policy set. It is safe for
// unlimited concurrent reads; it is never mutated after NewStore returns.
type Store struct {
	byName  map[string]*Policy
	ordered []*Policy
}

// NewStore validates and compiles the given policy definitions. Validation
// failures are fatal: the error names every offending policy and field and
// no store is returned.
func NewStore(policies []podsecv1alpha1.PodSecurityPolicy) (*Store, error) {
	s := &Store{byName: make(map[string]*Policy, len(policies))}

	var errs []error
	for i := range policies {
		p := &policies[i]
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("policy at index %d has no name", i))
			continue
		}
		if err := naming.ValidatePolicyName(p.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := s.byName[p.Name]; dup {
			errs = append(errs, fmt.Errorf("policy %q: duplicate name", p.Name))
			continue
		}
		if fieldErrs := ValidatePolicy(p); len(fieldErrs) > 0 {
			errs = append(errs, fmt.Errorf("policy %q: %w", p.Name, fieldErrs.ToAggregate()))
			continue
		}
		compiled := compile(p)
		s.byName[p.Name] = compiled
		s.ordered = append(s.ordered, compiled)
	}
	if len(errs) > 0 {
		return nil, utilerrors.NewAggregate(errs)
	}

	// evaluation order: higher priority first, then lexicographic by name.
	// This ordering is the contract that makes first-match-wins admission
	// reproducible.
	sort.Slice(s.ordered, func(i, j int) bool {
		if s.ordered[i].Priority != s.ordered[j].Priority {
			return s.ordered[i].Priority > s.ordered[j].Priority
		}
		return s.ordered[i].Name < s.ordered[j].Name
	})

	return s, nil
}

// Get returns the named policy, or false when it is unknown.
func (s *Store) Get(name string) (*Policy, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Ordered returns all policies in evaluation order. Callers must not modify
// the returned slice.
func (s *Store) Ordered() []*Policy {
	return s.ordered
}

// Names returns all policy names in evaluation order.
func (s *Store) Names() []string {
	names := make([]string, len(s.ordered))
	for i, p := range s.ordered {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of policies in the snapshot.
func (s *Store) Len() int {
	return len(s.ordered)
}

// Provider hands out the current store snapshot and accepts replacement
// snapshots. Swaps are atomic: an evaluation that obtained a snapshot keeps
// it for its whole run and is never exposed to a half-updated policy set.
type Provider struct {
	current atomic.Pointer[Store]
}

// NewProvider creates a provider serving the given initial snapshot.
func NewProvider(initial *Store) *Provider {
	p := &Provider{}
	if initial == nil {
		initial = &Store{byName: map[string]*Policy{}}
	}
	p.current.Store(initial)
	return p
}

// Current returns the active snapshot.
func (p *Provider) Current() *Store {
	return p.current.Load()
}

// Swap replaces the active snapshot.
func (p *Provider) Swap(next *Store) {
	if next == nil {
		next = &Store{byName: map[string]*Policy{}}
	}
	p.current.Store(next)
}
