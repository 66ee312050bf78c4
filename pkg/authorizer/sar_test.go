package authorizer

import (
	"context"
	"errors"
	"testing"

	authorizationv1 "k8s.io/api/authorization/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func sarReactor(t *testing.T, allowed bool, evalErr string, capture **authorizationv1.SubjectAccessReview) k8stesting.ReactionFunc {
	t.Helper()
	return func(action k8stesting.Action) (bool, runtime.Object, error) {
		create, ok := action.(k8stesting.CreateAction)
		if !ok {
			t.Fatalf("unexpected action %T", action)
		}
		sar := create.GetObject().(*authorizationv1.SubjectAccessReview)
		if capture != nil {
			*capture = sar
		}
		sar = sar.DeepCopy()
		sar.Status = authorizationv1.SubjectAccessReviewStatus{
			Allowed:         allowed,
			EvaluationError: evalErr,
		}
		return true, sar, nil
	}
}

func TestSubjectAccessReviewAuthorizerAllowed(t *testing.T) {
	var captured *authorizationv1.SubjectAccessReview
	client := fake.NewSimpleClientset()
	client.PrependReactor("create", "subjectaccessreviews", sarReactor(t, true, "", &captured))

	auth := NewSubjectAccessReviewAuthorizer(client)
	id := ServiceAccount("team-a", "builder")

	allowed, err := auth.MayUse(context.Background(), id, "restricted", "team-a")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed")
	}

	attrs := captured.Spec.ResourceAttributes
	if attrs.Verb != "use" {
		t.Errorf("expected use verb, got %q", attrs.Verb)
	}
	if attrs.Resource != "podsecuritypolicies" {
		t.Errorf("unexpected resource %q", attrs.Resource)
	}
	if attrs.Name != "restricted" || attrs.Namespace != "team-a" {
		t.Errorf("unexpected attributes %+v", attrs)
	}
	if captured.Spec.User != id.Name || len(captured.Spec.Groups) != 2 {
		t.Errorf("identity not forwarded: %+v", captured.Spec)
	}
}

func TestSubjectAccessReviewAuthorizerDenied(t *testing.T) {
	client := fake.NewSimpleClientset()
	client.PrependReactor("create", "subjectaccessreviews", sarReactor(t, false, "", nil))

	auth := NewSubjectAccessReviewAuthorizer(client)
	allowed, err := auth.MayUse(context.Background(), Identity{Name: "joe"}, "restricted", "ns")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if allowed {
		t.Fatalf("expected denied")
	}
}

func TestSubjectAccessReviewAuthorizerTransportError(t *testing.T) {
	client := fake.NewSimpleClientset()
	client.PrependReactor("create", "subjectaccessreviews", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("apiserver unreachable")
	})

	auth := NewSubjectAccessReviewAuthorizer(client)
	_, err := auth.MayUse(context.Background(), Identity{Name: "joe"}, "restricted", "ns")
	if err == nil {
		t.Fatalf("expected transport error to surface, not a deny")
	}
}

func TestSubjectAccessReviewAuthorizerEvaluationError(t *testing.T) {
	client := fake.NewSimpleClientset()
	client.PrependReactor("create", "subjectaccessreviews", sarReactor(t, false, "no RBAC rules synced", nil))

	auth := NewSubjectAccessReviewAuthorizer(client)
	_, err := auth.MayUse(context.Background(), Identity{Name: "joe"}, "restricted", "ns")
	if err == nil {
		t.Fatalf("expected evaluation error to surface")
	}
}
