package policy

import (
	"k8s.io/apimachinery/pkg/util/sets"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
)

// Policy is the compiled, immutable form of a PodSecurityPolicy spec.
// Every security-sensitive field of a pod spec is evaluable against it:
// the absence of a rule in the source spec compiles to an explicit rule
// here (RunAsAny for ID rules, an empty allow set for volumes and ports),
// so looseness is never implicit.
type Policy struct {
	Name     string
	Priority int32

	Privileged  bool
	HostNetwork bool
	HostPID     bool
	HostIPC     bool

	// AllowPrivilegeEscalation defaults to true when the spec leaves it unset.
	AllowPrivilegeEscalation bool
	// DefaultAllowPrivilegeEscalation is nil when the spec does not default
	// the container preference.
	DefaultAllowPrivilegeEscalation *bool

	RunAsUser          podsecv1alpha1.IDRule
	RunAsGroup         podsecv1alpha1.IDRule
	SupplementalGroups podsecv1alpha1.IDRule
	FSGroup            podsecv1alpha1.IDRule
	SELinux            podsecv1alpha1.SELinuxRule

	allowAllVolumes bool
	allowedVolumes  sets.Set[string]

	allowAllCapabilities bool
	allowedCapabilities  sets.Set[string]

	DefaultAddCapabilities   []string
	RequiredDropCapabilities []string

	HostPorts []podsecv1alpha1.HostPortRange
}

// compile translates a validated spec into its evaluable form.
func compile(src *podsecv1alpha1.PodSecurityPolicy) *Policy {
	spec := src.Spec
	p := &Policy{
		Name:        src.Name,
		Priority:    src.PriorityValue(),
		Privileged:  spec.Privileged,
		HostNetwork: spec.HostNetwork,
		HostPID:     spec.HostPID,
		HostIPC:     spec.HostIPC,

		AllowPrivilegeEscalation:        spec.AllowPrivilegeEscalation == nil || *spec.AllowPrivilegeEscalation,
		DefaultAllowPrivilegeEscalation: spec.DefaultAllowPrivilegeEscalation,

		RunAsUser:          spec.RunAsUser,
		SupplementalGroups: spec.SupplementalGroups,
		FSGroup:            spec.FSGroup,
		SELinux:            spec.SELinux,

		DefaultAddCapabilities:   append([]string(nil), spec.DefaultAddCapabilities...),
		RequiredDropCapabilities: append([]string(nil), spec.RequiredDropCapabilities...),
		HostPorts:                append([]podsecv1alpha1.HostPortRange(nil), spec.HostPorts...),
	}

	// an omitted runAsGroup rule means any primary GID is acceptable
	if spec.RunAsGroup != nil {
		p.RunAsGroup = *spec.RunAsGroup
	} else {
		p.RunAsGroup = podsecv1alpha1.IDRule{Rule: podsecv1alpha1.RuleRunAsAny}
	}

	p.allowedVolumes = sets.New[string]()
	for _, v := range spec.Volumes {
		if v == podsecv1alpha1.AllowAll {
			p.allowAllVolumes = true
			continue
		}
		p.allowedVolumes.Insert(v)
	}

	p.allowedCapabilities = sets.New[string]()
	for _, c := range spec.AllowedCapabilities {
		if c == podsecv1alpha1.AllowAll {
			p.allowAllCapabilities = true
			continue
		}
		p.allowedCapabilities.Insert(c)
	}

	return p
}

// AllowsVolumeKind reports whether the policy permits the volume source kind.
func (p *Policy) AllowsVolumeKind(kind string) bool {
	return p.allowAllVolumes || p.allowedVolumes.Has(kind)
}

// AllowsCapability reports whether containers may add the capability.
func (p *Policy) AllowsCapability(name string) bool {
	return p.allowAllCapabilities || p.allowedCapabilities.Has(name)
}

// AllowsHostPort reports whether the port falls into one of the allowed
// intervals. A policy without host port ranges allows no host ports.
func (p *Policy) AllowsHostPort(port int32) bool {
	for _, r := range p.HostPorts {
		if port >= r.Min && port <= r.Max {
			return true
		}
	}
	return false
}
