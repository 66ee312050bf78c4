package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func retryScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, podsecv1alpha1.AddToScheme(scheme))
	return scheme
}

func retryPolicy() *podsecv1alpha1.PodSecurityPolicy {
	return &podsecv1alpha1.PodSecurityPolicy{
		ObjectMeta: metav1.ObjectMeta{Name: "restricted"},
		Spec: podsecv1alpha1.PodSecurityPolicySpec{
			RunAsUser:          podsecv1alpha1.IDRule{Rule: podsecv1alpha1.RuleRunAsAny},
			SupplementalGroups: podsecv1alpha1.IDRule{Rule: podsecv1alpha1.RuleRunAsAny},
			FSGroup:            podsecv1alpha1.IDRule{Rule: podsecv1alpha1.RuleRunAsAny},
			SELinux:            podsecv1alpha1.SELinuxRule{Rule: podsecv1alpha1.RuleRunAsAny},
		},
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 2.0, cfg.BackoffMultiplier)
}

func TestStatusUpdateWithRetrySuccess(t *testing.T) {
	pol := retryPolicy()
	c := fake.NewClientBuilder().
		WithScheme(retryScheme(t)).
		WithObjects(pol).
		WithStatusSubresource(&podsecv1alpha1.PodSecurityPolicy{}).
		Build()

	err := StatusUpdateWithRetry(context.Background(), c, pol, func(p *podsecv1alpha1.PodSecurityPolicy) error {
		p.Status.ObservedGeneration = 7
		return nil
	}, fastRetryConfig())
	require.NoError(t, err)

	var updated podsecv1alpha1.PodSecurityPolicy
	require.NoError(t, c.Get(context.Background(), client.ObjectKeyFromObject(pol), &updated))
	assert.Equal(t, int64(7), updated.Status.ObservedGeneration)
}

func TestStatusUpdateWithRetryRecoversFromConflict(t *testing.T) {
	pol := retryPolicy()

	conflicts := 2
	c := fake.NewClientBuilder().
		WithScheme(retryScheme(t)).
		WithObjects(pol).
		WithStatusSubresource(&podsecv1alpha1.PodSecurityPolicy{}).
		WithInterceptorFuncs(interceptor.Funcs{
			SubResourceUpdate: func(ctx context.Context, cl client.Client, sub string, obj client.Object, opts ...client.SubResourceUpdateOption) error {
				if conflicts > 0 {
					conflicts--
					return apierrors.NewConflict(
						schema.GroupResource{Group: podsecv1alpha1.GroupVersion.Group, Resource: "podsecuritypolicies"},
						obj.GetName(), errors.New("the object has been modified"))
				}
				return cl.SubResource(sub).Update(ctx, obj, opts...)
			},
		}).
		Build()

	modifyCalls := 0
	err := StatusUpdateWithRetry(context.Background(), c, pol, func(p *podsecv1alpha1.PodSecurityPolicy) error {
		modifyCalls++
		p.Status.ObservedGeneration = 3
		return nil
	}, fastRetryConfig())
	require.NoError(t, err)

	// modify runs once per attempt so the retry works on fresh state
	assert.Equal(t, 3, modifyCalls)

	var updated podsecv1alpha1.PodSecurityPolicy
	require.NoError(t, c.Get(context.Background(), client.ObjectKeyFromObject(pol), &updated))
	assert.Equal(t, int64(3), updated.Status.ObservedGeneration)
}

func TestStatusUpdateWithRetryExhaustsRetries(t *testing.T) {
	pol := retryPolicy()
	c := fake.NewClientBuilder().
		WithScheme(retryScheme(t)).
		WithObjects(pol).
		WithStatusSubresource(&podsecv1alpha1.PodSecurityPolicy{}).
		WithInterceptorFuncs(interceptor.Funcs{
			SubResourceUpdate: func(ctx context.Context, cl client.Client, sub string, obj client.Object, opts ...client.SubResourceUpdateOption) error {
				return apierrors.NewConflict(
					schema.GroupResource{Group: podsecv1alpha1.GroupVersion.Group, Resource: "podsecuritypolicies"},
					obj.GetName(), errors.New("the object has been modified"))
			},
		}).
		Build()

	err := StatusUpdateWithRetry(context.Background(), c, pol, func(p *podsecv1alpha1.PodSecurityPolicy) error {
		return nil
	}, fastRetryConfig())
	require.Error(t, err)
	assert.True(t, apierrors.IsConflict(err))
}

func TestStatusUpdateWithRetryModifyError(t *testing.T) {
	pol := retryPolicy()
	c := fake.NewClientBuilder().
		WithScheme(retryScheme(t)).
		WithObjects(pol).
		WithStatusSubresource(&podsecv1alpha1.PodSecurityPolicy{}).
		Build()

	wantErr := errors.New("modify failed")
	err := StatusUpdateWithRetry(context.Background(), c, pol, func(p *podsecv1alpha1.PodSecurityPolicy) error {
		return wantErr
	}, fastRetryConfig())
	assert.ErrorIs(t, err, wantErr)
}
