package naming

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// ValidatePolicyName checks that a policy name is a valid RFC 1123
// subdomain. Policies loaded from disk are not guaranteed to carry names the
// API server would have accepted, and the name ends up in RBAC resourceNames
// and object annotations, so it must be a legal Kubernetes object name.
func ValidatePolicyName(name string) error {
	if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return fmt.Errorf("invalid policy name %q: %s", name, strings.Join(errs, "; "))
	}
	return nil
}
