package policy

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
	"github.com/telekom/k8s-podsec-admission/pkg/request"
)

// Default records a value the policy would apply because the request left
// the field unset. Defaulting is an observable side effect: the admission
// engine reports it alongside the decision.
type Default struct {
	Field string
	Value string
}

// MatchResult is the outcome of evaluating one request against one policy.
// Violations are collected exhaustively, never short-circuited, so a denial
// diagnostic lists every reason the request failed.
type MatchResult struct {
	Violations field.ErrorList
	Defaults   []Default
}

// Allowed reports whether the request satisfies the policy.
func (r MatchResult) Allowed() bool {
	return len(r.Violations) == 0
}

// Reasons renders the violations as plain strings for diagnostics.
func (r MatchResult) Reasons() []string {
	reasons := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		reasons[i] = v.Error()
	}
	return reasons
}

// Match evaluates the request against the policy. It is a pure function:
// no shared state, no side effects, same inputs always produce the same
// result.
func Match(p *Policy, req *request.PodSecurityRequest) MatchResult {
	res := MatchResult{}
	specPath := field.NewPath("spec")

	res.checkFlag(specPath.Child("hostNetwork"), "hostNetwork", req.HostNetwork, p.HostNetwork)
	res.checkFlag(specPath.Child("hostPID"), "hostPID", req.HostPID, p.HostPID)
	res.checkFlag(specPath.Child("hostIPC"), "hostIPC", req.HostIPC, p.HostIPC)

	scPath := specPath.Child("securityContext")
	res.checkFlag(scPath.Child("privileged"), "privileged", req.Privileged, p.Privileged)

	if req.AllowPrivilegeEscalation != nil {
		res.checkFlag(scPath.Child("allowPrivilegeEscalation"), "allowPrivilegeEscalation",
			*req.AllowPrivilegeEscalation, p.AllowPrivilegeEscalation)
	} else if p.DefaultAllowPrivilegeEscalation != nil {
		res.recordDefault("allowPrivilegeEscalation", fmt.Sprintf("%t", *p.DefaultAllowPrivilegeEscalation))
	}

	res.checkIDRule(scPath.Child("runAsUser"), "runAsUser", p.RunAsUser, req.RunAsUser)
	res.checkIDRule(scPath.Child("runAsGroup"), "runAsGroup", p.RunAsGroup, req.RunAsGroup)
	res.checkIDRule(scPath.Child("fsGroup"), "fsGroup", p.FSGroup, req.FSGroup)
	res.checkSupplementalGroups(scPath.Child("supplementalGroups"), p.SupplementalGroups, req.SupplementalGroups)
	res.checkSELinux(scPath.Child("seLinuxOptions"), p.SELinux, req.SELinux)

	for _, kind := range req.Volumes {
		if !p.AllowsVolumeKind(kind) {
			res.Violations = append(res.Violations, field.Forbidden(
				specPath.Child("volumes"),
				fmt.Sprintf("volume kind %s is not allowed", kind)))
		}
	}

	capsPath := scPath.Child("capabilities")
	for _, name := range req.AddedCapabilities {
		if !p.AllowsCapability(name) {
			res.Violations = append(res.Violations, field.Forbidden(
				capsPath.Child("add"),
				fmt.Sprintf("capability %s may not be added", name)))
		}
	}
	dropped := make(map[string]bool, len(req.DroppedCapabilities))
	for _, name := range req.DroppedCapabilities {
		dropped[name] = true
	}
	for _, name := range p.RequiredDropCapabilities {
		if !dropped[name] {
			res.Violations = append(res.Violations, field.Forbidden(
				capsPath.Child("drop"),
				fmt.Sprintf("capability %s must be dropped", name)))
		}
	}
	added := make(map[string]bool, len(req.AddedCapabilities))
	for _, name := range req.AddedCapabilities {
		added[name] = true
	}
	for _, name := range p.DefaultAddCapabilities {
		if !added[name] && !dropped[name] {
			res.recordDefault("capabilities.add", name)
		}
	}

	for _, port := range req.HostPorts {
		if !p.AllowsHostPort(port) {
			res.Violations = append(res.Violations, field.Forbidden(
				specPath.Child("containers").Child("ports"),
				fmt.Sprintf("host port %d is not allowed", port)))
		}
	}

	return res
}

func (r *MatchResult) checkFlag(path *field.Path, name string, requested, allowed bool) {
	// a request for less than the policy allows always satisfies the policy
	if requested && !allowed {
		r.Violations = append(r.Violations, field.Forbidden(path,
			fmt.Sprintf("%s true not allowed", name)))
	}
}

func (r *MatchResult) checkIDRule(path *field.Path, name string, rule podsecv1alpha1.IDRule, requested *int64) {
	if rule.Rule == podsecv1alpha1.RuleRunAsAny {
		return
	}
	if requested == nil {
		// MustRunAs defaults the unset value to the first range minimum
		r.recordDefault(name, fmt.Sprintf("%d", rule.Ranges[0].Min))
		return
	}
	for _, rng := range rule.Ranges {
		if *requested >= rng.Min && *requested <= rng.Max {
			return
		}
	}
	r.Violations = append(r.Violations, field.Invalid(path, *requested,
		fmt.Sprintf("%s %d is outside the allowed ranges", name, *requested)))
}

func (r *MatchResult) checkSupplementalGroups(path *field.Path, rule podsecv1alpha1.IDRule, requested []int64) {
	if rule.Rule == podsecv1alpha1.RuleRunAsAny {
		return
	}
	if len(requested) == 0 {
		r.recordDefault("supplementalGroups", fmt.Sprintf("%d", rule.Ranges[0].Min))
		return
	}
	for _, gid := range requested {
		inRange := false
		for _, rng := range rule.Ranges {
			if gid >= rng.Min && gid <= rng.Max {
				inRange = true
				break
			}
		}
		if !inRange {
			r.Violations = append(r.Violations, field.Invalid(path, gid,
				fmt.Sprintf("supplemental group %d is outside the allowed ranges", gid)))
		}
	}
}

func (r *MatchResult) checkSELinux(path *field.Path, rule podsecv1alpha1.SELinuxRule, requested *corev1.SELinuxOptions) {
	if rule.Rule == podsecv1alpha1.RuleRunAsAny {
		return
	}
	want := rule.SELinuxOptions
	if requested == nil {
		r.recordDefault("seLinuxOptions", selinuxString(want))
		return
	}
	if want.User != "" && want.User != requested.User {
		r.Violations = append(r.Violations, field.Invalid(path.Child("user"), requested.User,
			fmt.Sprintf("seLinux user must be %s", want.User)))
	}
	if want.Role != "" && want.Role != requested.Role {
		r.Violations = append(r.Violations, field.Invalid(path.Child("role"), requested.Role,
			fmt.Sprintf("seLinux role must be %s", want.Role)))
	}
	if want.Type != "" && want.Type != requested.Type {
		r.Violations = append(r.Violations, field.Invalid(path.Child("type"), requested.Type,
			fmt.Sprintf("seLinux type must be %s", want.Type)))
	}
	if want.Level != "" && want.Level != requested.Level {
		r.Violations = append(r.Violations, field.Invalid(path.Child("level"), requested.Level,
			fmt.Sprintf("seLinux level must be %s", want.Level)))
	}
}

func (r *MatchResult) recordDefault(fieldName, value string) {
	r.Defaults = append(r.Defaults, Default{Field: fieldName, Value: value})
}

func selinuxString(o *podsecv1alpha1.SELinuxOptions) string {
	return fmt.Sprintf("user=%s,role=%s,type=%s,level=%s", o.User, o.Role, o.Type, o.Level)
}
