package v1alpha1

import (
	apimeta "k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PodSecurityPolicyConditionType defines condition types for PodSecurityPolicy resources.
type PodSecurityPolicyConditionType string

const (
	// PodSecurityPolicyConditionReady indicates the policy compiled successfully and is
	// part of the active policy set served to the admission engine.
	PodSecurityPolicyConditionReady PodSecurityPolicyConditionType = "Ready"
	// PodSecurityPolicyConditionValid indicates the policy spec passed structural validation.
	PodSecurityPolicyConditionValid PodSecurityPolicyConditionType = "Valid"
)

// RuleStrategy selects how an ID or SELinux rule constrains requested values.
type RuleStrategy string

const (
	// RuleRunAsAny accepts any requested value, including none.
	RuleRunAsAny RuleStrategy = "RunAsAny"
	// RuleMustRunAs requires the requested value to fall inside the rule's
	// ranges (or match the rule's SELinux options). When the request leaves
	// the value unset, the first range's minimum is applied as default.
	RuleMustRunAs RuleStrategy = "MustRunAs"
)

// AllowAll is the wildcard entry accepted in volume and capability lists.
const AllowAll = "*"

// IDRange is an inclusive [min,max] interval of POSIX IDs.
type IDRange struct {
	// min is the start of the range, inclusive.
	Min int64 `json:"min"`
	// max is the end of the range, inclusive.
	Max int64 `json:"max"`
}

// IDRule constrains run-as user/group style fields.
type IDRule struct {
	// rule is the strategy: RunAsAny or MustRunAs.
	// +kubebuilder:validation:Enum=RunAsAny;MustRunAs
	Rule RuleStrategy `json:"rule"`
	// ranges are the allowed ID intervals. Required when rule is MustRunAs.
	// +optional
	Ranges []IDRange `json:"ranges,omitempty"`
}

// SELinuxRule constrains the SELinux context of admitted pods.
type SELinuxRule struct {
	// rule is the strategy: RunAsAny or MustRunAs.
	// +kubebuilder:validation:Enum=RunAsAny;MustRunAs
	Rule RuleStrategy `json:"rule"`
	// seLinuxOptions is the required context when rule is MustRunAs.
	// +optional
	SELinuxOptions *SELinuxOptions `json:"seLinuxOptions,omitempty"`
}

// SELinuxOptions are the labels applied to (or required of) a container.
type SELinuxOptions struct {
	// +optional
	User string `json:"user,omitempty"`
	// +optional
	Role string `json:"role,omitempty"`
	// +optional
	Type string `json:"type,omitempty"`
	// +optional
	Level string `json:"level,omitempty"`
}

// HostPortRange is an inclusive [min,max] interval of allowed host ports.
type HostPortRange struct {
	Min int32 `json:"min"`
	Max int32 `json:"max"`
}

// PodSecurityPolicySpec defines the constraints a pod must satisfy to be
// admitted under this policy.
type PodSecurityPolicySpec struct {
	// privileged permits containers requesting privileged mode.
	// +optional
	Privileged bool `json:"privileged,omitempty"`

	// hostNetwork permits use of the host network namespace.
	// +optional
	HostNetwork bool `json:"hostNetwork,omitempty"`
	// hostPID permits use of the host PID namespace.
	// +optional
	HostPID bool `json:"hostPID,omitempty"`
	// hostIPC permits use of the host IPC namespace.
	// +optional
	HostIPC bool `json:"hostIPC,omitempty"`

	// allowPrivilegeEscalation permits containers that request
	// allowPrivilegeEscalation=true. Defaults to true to match the historical
	// behavior of setuid binaries being runnable.
	// +optional
	AllowPrivilegeEscalation *bool `json:"allowPrivilegeEscalation,omitempty"`
	// defaultAllowPrivilegeEscalation sets the default for containers that do
	// not state a preference. Leaving it unset preserves the container default.
	// +optional
	DefaultAllowPrivilegeEscalation *bool `json:"defaultAllowPrivilegeEscalation,omitempty"`

	// runAsUser constrains the pod's UID.
	RunAsUser IDRule `json:"runAsUser"`
	// runAsGroup constrains the pod's primary GID. If omitted any GID is accepted.
	// +optional
	RunAsGroup *IDRule `json:"runAsGroup,omitempty"`
	// supplementalGroups constrains supplemental GIDs.
	SupplementalGroups IDRule `json:"supplementalGroups"`
	// fsGroup constrains the pod's fsGroup.
	FSGroup IDRule `json:"fsGroup"`
	// seLinux constrains the pod's SELinux context.
	SELinux SELinuxRule `json:"seLinux"`

	// volumes lists the allowed volume source kinds (e.g. configMap, secret,
	// emptyDir). "*" allows all kinds. An empty list allows no volumes.
	// +optional
	Volumes []string `json:"volumes,omitempty"`

	// allowedCapabilities lists Linux capabilities containers may add.
	// "*" allows all capabilities.
	// +optional
	AllowedCapabilities []string `json:"allowedCapabilities,omitempty"`
	// defaultAddCapabilities are added to every admitted container unless the
	// container drops them explicitly.
	// +optional
	DefaultAddCapabilities []string `json:"defaultAddCapabilities,omitempty"`
	// requiredDropCapabilities must be dropped by every admitted container.
	// +optional
	RequiredDropCapabilities []string `json:"requiredDropCapabilities,omitempty"`

	// hostPorts lists the allowed host port intervals. An empty list forbids
	// host ports entirely.
	// +optional
	HostPorts []HostPortRange `json:"hostPorts,omitempty"`

	// priority orders candidate policies during admission: higher priority
	// policies are attempted first; ties break lexicographically by name.
	// Unset means 0.
	// +optional
	Priority *int32 `json:"priority,omitempty"`
}

// PodSecurityPolicyStatus reflects validation and compilation state.
type PodSecurityPolicyStatus struct {
	// conditions describe the policy's validation state (Valid, Ready).
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
	// observedGeneration is the generation last processed by the reconciler.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:scope=Cluster,shortName=podsecpol
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Privileged",type=boolean,JSONPath=`.spec.privileged`
// +kubebuilder:printcolumn:name="Priority",type=integer,JSONPath=`.spec.priority`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// PodSecurityPolicy is a named, cluster-scoped set of constraints over the
// security-sensitive fields of a pod spec.
type PodSecurityPolicy struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PodSecurityPolicySpec   `json:"spec"`
	Status PodSecurityPolicyStatus `json:"status,omitempty"`
}

// SetCondition updates or adds a condition in the policy status.
func (p *PodSecurityPolicy) SetCondition(condition metav1.Condition) {
	apimeta.SetStatusCondition(&p.Status.Conditions, condition)
}

// GetCondition retrieves a condition from the policy status by type.
func (p *PodSecurityPolicy) GetCondition(condType string) *metav1.Condition {
	return apimeta.FindStatusCondition(p.Status.Conditions, condType)
}

// PriorityValue returns the effective priority (0 when unset).
func (p *PodSecurityPolicy) PriorityValue() int32 {
	if p.Spec.Priority == nil {
		return 0
	}
	return *p.Spec.Priority
}

// +kubebuilder:object:root=true
type PodSecurityPolicyList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []PodSecurityPolicy `json:"items"`
}

func init() { SchemeBuilder.Register(&PodSecurityPolicy{}, &PodSecurityPolicyList{}) }
