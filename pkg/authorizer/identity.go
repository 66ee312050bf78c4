package authorizer

import "fmt"

const (
	serviceAccountUsernamePrefix = "system:serviceaccount:"
	allServiceAccountsGroup      = "system:serviceaccounts"
)

// Identity is the acting principal of an admission request: either a human
// user with group memberships or a workload service account. The resolver
// treats it as an opaque lookup key.
type Identity struct {
	Name   string
	Groups []string
}

// ServiceAccount builds the identity of a namespaced service account using
// the canonical username and group encoding.
func ServiceAccount(namespace, name string) Identity {
	return Identity{
		Name: serviceAccountUsernamePrefix + namespace + ":" + name,
		Groups: []string{
			allServiceAccountsGroup,
			allServiceAccountsGroup + ":" + namespace,
		},
	}
}

// String renders the identity for logs and audit events.
func (id Identity) String() string {
	if len(id.Groups) == 0 {
		return id.Name
	}
	return fmt.Sprintf("%s (groups: %d)", id.Name, len(id.Groups))
}
