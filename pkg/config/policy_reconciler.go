package config

import (
	"context"

	"go.uber.org/zap"
	apimeta "k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
	"github.com/telekom/k8s-podsec-admission/pkg/audit"
	"github.com/telekom/k8s-podsec-admission/pkg/metrics"
	"github.com/telekom/k8s-podsec-admission/pkg/policy"
	"github.com/telekom/k8s-podsec-admission/pkg/system"
	"github.com/telekom/k8s-podsec-admission/pkg/utils"
)

const (
	// PolicyConditionReady indicates the policy is part of the active store.
	PolicyConditionReady = "Ready"
	// PolicyConditionValid indicates the policy spec passed validation.
	PolicyConditionValid = "Valid"
)

// PodSecurityPolicyReconciler watches PodSecurityPolicy resources, validates
// them, updates their status conditions, and rebuilds the active policy
// store on every change. The rebuild is copy-and-swap: a complete new store
// is compiled from all valid policies and atomically replaces the old one,
// so concurrent admissions never observe a partial update.
type PodSecurityPolicyReconciler struct {
	client   client.Client
	provider *policy.Provider
	auditor  *audit.Service
	logger   *zap.SugaredLogger
}

// NewPodSecurityPolicyReconciler creates a reconciler feeding provider.
// auditor may be nil.
func NewPodSecurityPolicyReconciler(c client.Client, provider *policy.Provider, auditor *audit.Service, logger *zap.SugaredLogger) *PodSecurityPolicyReconciler {
	return &PodSecurityPolicyReconciler{client: c, provider: provider, auditor: auditor, logger: logger}
}

// +kubebuilder:rbac:groups=podsecurity.t-caas.telekom.com,resources=podsecuritypolicies,verbs=get;list;watch
// +kubebuilder:rbac:groups=podsecurity.t-caas.telekom.com,resources=podsecuritypolicies/status,verbs=get;update;patch

// Reconcile validates the changed policy, updates its status, and swaps in
// a freshly compiled store.
func (r *PodSecurityPolicyReconciler) Reconcile(ctx context.Context, req reconcile.Request) (reconcile.Result, error) {
	r.logger.Debugw("Reconciling PodSecurityPolicy", system.NamespacedFields(req.Name, req.Namespace)...)

	pol := &podsecv1alpha1.PodSecurityPolicy{}
	err := r.client.Get(ctx, req.NamespacedName, pol)
	if err != nil {
		if client.IgnoreNotFound(err) != nil {
			r.logger.Warnw("Failed to fetch PodSecurityPolicy", "name", req.Name, "error", err)
			return reconcile.Result{}, err
		}
		// deleted: rebuild without it
		return reconcile.Result{}, r.rebuildStore(ctx)
	}

	if fieldErrs := policy.ValidatePolicy(pol); len(fieldErrs) > 0 {
		r.logger.Warnw("PodSecurityPolicy validation failed",
			"policy", pol.Name, "error", fieldErrs.ToAggregate())
	}

	// validate inside the modify func so a conflict retry re-validates the
	// freshly fetched generation instead of reapplying stale conditions
	applyStatus := func(p *podsecv1alpha1.PodSecurityPolicy) error {
		setValidationConditions(p, policy.ValidatePolicy(p))
		p.Status.ObservedGeneration = p.Generation
		return nil
	}
	if err := utils.StatusUpdateWithRetry(ctx, r.client, pol, applyStatus, utils.DefaultRetryConfig()); err != nil {
		r.logger.Warnw("Failed to update PodSecurityPolicy status",
			"policy", pol.Name, "error", err)
		return reconcile.Result{}, err
	}

	return reconcile.Result{}, r.rebuildStore(ctx)
}

func setValidationConditions(pol *podsecv1alpha1.PodSecurityPolicy, fieldErrs field.ErrorList) {
	now := metav1.Now()
	if len(fieldErrs) > 0 {
		apimeta.SetStatusCondition(&pol.Status.Conditions, metav1.Condition{
			Type:               PolicyConditionValid,
			Status:             metav1.ConditionFalse,
			ObservedGeneration: pol.Generation,
			Reason:             "ValidationFailed",
			Message:            fieldErrs.ToAggregate().Error(),
			LastTransitionTime: now,
		})
		apimeta.SetStatusCondition(&pol.Status.Conditions, metav1.Condition{
			Type:               PolicyConditionReady,
			Status:             metav1.ConditionFalse,
			ObservedGeneration: pol.Generation,
			Reason:             "ValidationFailed",
			Message:            "Policy validation failed; it is excluded from the active policy set",
			LastTransitionTime: now,
		})
		return
	}
	apimeta.SetStatusCondition(&pol.Status.Conditions, metav1.Condition{
		Type:               PolicyConditionValid,
		Status:             metav1.ConditionTrue,
		ObservedGeneration: pol.Generation,
		Reason:             "ValidationSucceeded",
		Message:            "Policy configuration is valid",
		LastTransitionTime: now,
	})
	apimeta.SetStatusCondition(&pol.Status.Conditions, metav1.Condition{
		Type:               PolicyConditionReady,
		Status:             metav1.ConditionTrue,
		ObservedGeneration: pol.Generation,
		Reason:             "Ready",
		Message:            "Policy is part of the active policy set",
		LastTransitionTime: now,
	})
}

// rebuildStore compiles a new store from every valid policy in the cluster
// and swaps it in. Invalid policies are skipped, not fatal: one bad policy
// must not take down admission for the rest.
func (r *PodSecurityPolicyReconciler) rebuildStore(ctx context.Context) error {
	list := &podsecv1alpha1.PodSecurityPolicyList{}
	if err := r.client.List(ctx, list); err != nil {
		metrics.PolicyReloads.WithLabelValues("error").Inc()
		return err
	}

	valid := make([]podsecv1alpha1.PodSecurityPolicy, 0, len(list.Items))
	for i := range list.Items {
		if errs := policy.ValidatePolicy(&list.Items[i]); len(errs) > 0 {
			continue
		}
		valid = append(valid, list.Items[i])
	}

	store, err := policy.NewStore(valid)
	if err != nil {
		// only reachable through duplicate names; keep serving the old set
		metrics.PolicyReloads.WithLabelValues("error").Inc()
		r.logger.Errorw("Failed to compile policy store, keeping previous snapshot", "error", err)
		return nil
	}

	r.provider.Swap(store)
	metrics.PolicyReloads.WithLabelValues("success").Inc()
	metrics.PoliciesLoaded.Set(float64(store.Len()))
	r.auditor.Record(ctx, audit.NewPolicyReloadEvent(store.Len()))
	r.logger.Infow("Policy store reloaded", "policies", store.Len())
	return nil
}

// SetupWithManager registers the reconciler with the manager.
func (r *PodSecurityPolicyReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&podsecv1alpha1.PodSecurityPolicy{}).
		Named("podsecuritypolicy").
		Complete(r)
}
