package authorizer

import (
	"context"

	"github.com/pkg/errors"
	authorizationv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
)

// UseVerb is the RBAC verb granting permission to use a policy.
const UseVerb = "use"

// policyResource is the plural resource name bindings refer to.
const policyResource = "podsecuritypolicies"

// SubjectAccessReviewAuthorizer checks policy bindings by posting a
// SubjectAccessReview to the cluster's RBAC store. Cluster-scoped bindings
// apply in every namespace and namespace-scoped bindings only in theirs;
// the review resolves both.
type SubjectAccessReviewAuthorizer struct {
	client kubernetes.Interface
}

// NewSubjectAccessReviewAuthorizer creates an authorizer backed by the
// given clientset.
func NewSubjectAccessReviewAuthorizer(client kubernetes.Interface) *SubjectAccessReviewAuthorizer {
	return &SubjectAccessReviewAuthorizer{client: client}
}

// MayUse implements PolicyAuthorizer. A failed review is returned as an
// error, never as "not authorized".
func (a *SubjectAccessReviewAuthorizer) MayUse(ctx context.Context, id Identity, policyName, namespace string) (bool, error) {
	review := &authorizationv1.SubjectAccessReview{
		Spec: authorizationv1.SubjectAccessReviewSpec{
			User:   id.Name,
			Groups: id.Groups,
			ResourceAttributes: &authorizationv1.ResourceAttributes{
				Group:     podsecv1alpha1.GroupVersion.Group,
				Resource:  policyResource,
				Name:      policyName,
				Verb:      UseVerb,
				Namespace: namespace,
			},
		},
	}

	result, err := a.client.AuthorizationV1().SubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, errors.Wrap(err, "subject access review failed")
	}
	if result.Status.EvaluationError != "" && !result.Status.Allowed {
		return false, errors.Errorf("subject access review evaluation error: %s", result.Status.EvaluationError)
	}
	return result.Status.Allowed, nil
}
