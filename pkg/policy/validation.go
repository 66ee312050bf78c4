package policy

import (
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
)

// ValidatePolicy checks that a policy spec is internally consistent. The
// returned error list names the policy and every offending field; a policy
// failing validation is rejected at load time and never enters the store.
func ValidatePolicy(p *podsecv1alpha1.PodSecurityPolicy) field.ErrorList {
	return ValidateSpec(&p.Spec, field.NewPath("spec"))
}

// ValidateSpec validates a policy spec rooted at fldPath.
func ValidateSpec(spec *podsecv1alpha1.PodSecurityPolicySpec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}

	allErrs = append(allErrs, validateIDRule(&spec.RunAsUser, fldPath.Child("runAsUser"))...)
	if spec.RunAsGroup != nil {
		allErrs = append(allErrs, validateIDRule(spec.RunAsGroup, fldPath.Child("runAsGroup"))...)
	}
	allErrs = append(allErrs, validateIDRule(&spec.SupplementalGroups, fldPath.Child("supplementalGroups"))...)
	allErrs = append(allErrs, validateIDRule(&spec.FSGroup, fldPath.Child("fsGroup"))...)
	allErrs = append(allErrs, validateSELinuxRule(&spec.SELinux, fldPath.Child("seLinux"))...)

	if spec.DefaultAllowPrivilegeEscalation != nil && *spec.DefaultAllowPrivilegeEscalation &&
		spec.AllowPrivilegeEscalation != nil && !*spec.AllowPrivilegeEscalation {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("defaultAllowPrivilegeEscalation"), true,
			"cannot default to true when allowPrivilegeEscalation is false"))
	}

	seen := sets.New[string]()
	for i, v := range spec.Volumes {
		p := fldPath.Child("volumes").Index(i)
		if v == "" {
			allErrs = append(allErrs, field.Required(p, "volume kind must not be empty"))
			continue
		}
		if seen.Has(v) {
			allErrs = append(allErrs, field.Duplicate(p, v))
		}
		seen.Insert(v)
	}

	for i, c := range spec.AllowedCapabilities {
		if c == "" {
			allErrs = append(allErrs, field.Required(fldPath.Child("allowedCapabilities").Index(i), "capability must not be empty"))
		}
	}
	for i, c := range spec.DefaultAddCapabilities {
		p := fldPath.Child("defaultAddCapabilities").Index(i)
		if c == "" {
			allErrs = append(allErrs, field.Required(p, "capability must not be empty"))
		}
		if c == podsecv1alpha1.AllowAll {
			allErrs = append(allErrs, field.Invalid(p, c, "wildcard is not a capability"))
		}
	}
	for i, c := range spec.RequiredDropCapabilities {
		p := fldPath.Child("requiredDropCapabilities").Index(i)
		if c == "" {
			allErrs = append(allErrs, field.Required(p, "capability must not be empty"))
		}
		if c == podsecv1alpha1.AllowAll {
			allErrs = append(allErrs, field.Invalid(p, c, "wildcard is not a capability"))
		}
	}

	for i, r := range spec.HostPorts {
		p := fldPath.Child("hostPorts").Index(i)
		if r.Min < 0 || r.Max > 65535 {
			allErrs = append(allErrs, field.Invalid(p, r, "host ports must be between 0 and 65535"))
		}
		if r.Min > r.Max {
			allErrs = append(allErrs, field.Invalid(p, r, "min cannot be greater than max"))
		}
	}

	if spec.Priority != nil && *spec.Priority < 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("priority"), *spec.Priority, "priority must not be negative"))
	}

	return allErrs
}

func validateIDRule(rule *podsecv1alpha1.IDRule, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	switch rule.Rule {
	case podsecv1alpha1.RuleRunAsAny:
		if len(rule.Ranges) > 0 {
			allErrs = append(allErrs, field.Invalid(fldPath.Child("ranges"), rule.Ranges, "ranges are not allowed with RunAsAny"))
		}
	case podsecv1alpha1.RuleMustRunAs:
		if len(rule.Ranges) == 0 {
			allErrs = append(allErrs, field.Required(fldPath.Child("ranges"), "MustRunAs requires at least one range"))
		}
		for i, r := range rule.Ranges {
			p := fldPath.Child("ranges").Index(i)
			if r.Min < 0 {
				allErrs = append(allErrs, field.Invalid(p.Child("min"), r.Min, "min cannot be negative"))
			}
			if r.Min > r.Max {
				allErrs = append(allErrs, field.Invalid(p, r, "min cannot be greater than max"))
			}
		}
	default:
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("rule"), rule.Rule,
			[]podsecv1alpha1.RuleStrategy{podsecv1alpha1.RuleRunAsAny, podsecv1alpha1.RuleMustRunAs}))
	}
	return allErrs
}

func validateSELinuxRule(rule *podsecv1alpha1.SELinuxRule, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	switch rule.Rule {
	case podsecv1alpha1.RuleRunAsAny:
		if rule.SELinuxOptions != nil {
			allErrs = append(allErrs, field.Invalid(fldPath.Child("seLinuxOptions"), rule.SELinuxOptions, "seLinuxOptions are not allowed with RunAsAny"))
		}
	case podsecv1alpha1.RuleMustRunAs:
		if rule.SELinuxOptions == nil {
			allErrs = append(allErrs, field.Required(fldPath.Child("seLinuxOptions"), "MustRunAs requires seLinuxOptions"))
		}
	default:
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("rule"), rule.Rule,
			[]podsecv1alpha1.RuleStrategy{podsecv1alpha1.RuleRunAsAny, podsecv1alpha1.RuleMustRunAs}))
	}
	return allErrs
}
