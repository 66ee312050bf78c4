package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AdmissionRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podsec_admission_requests_total",
		Help: "Total number of pod admission requests evaluated",
	}, []string{"namespace"})
	AdmissionAdmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podsec_admission_admitted_total",
		Help: "Total number of admitted requests, by selected policy",
	}, []string{"namespace", "policy"})
	AdmissionDenied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podsec_admission_denied_total",
		Help: "Total number of denied requests",
	}, []string{"namespace", "reason"})
	AdmissionCancelled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podsec_admission_cancelled_total",
		Help: "Total number of evaluations aborted by caller cancellation",
	}, []string{"namespace"})
	AdmissionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podsec_admission_errors_total",
		Help: "Total number of evaluations that failed on the authorization collaborator",
	}, []string{"namespace"})
	// Candidate counts are observed per request. Policy names are bounded by
	// the size of the policy set, so label cardinality stays small.
	CandidatePolicies = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "podsec_admission_candidate_policies",
		Help:    "Number of candidate policies resolved per request",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	}, []string{"namespace"})
	PolicyDefaultsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podsec_admission_defaults_applied_total",
		Help: "Total number of admitted requests where the policy defaulted unset fields",
	}, []string{"policy"})
	PoliciesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "podsec_policies_loaded",
		Help: "Number of policies in the active store snapshot",
	})
	PolicyReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podsec_policy_reloads_total",
		Help: "Total number of policy store reloads, by result",
	}, []string{"result"})
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "podsec_webhook_rate_limited_total",
		Help: "Total number of review requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(AdmissionRequests)
	prometheus.MustRegister(AdmissionAdmitted)
	prometheus.MustRegister(AdmissionDenied)
	prometheus.MustRegister(AdmissionCancelled)
	prometheus.MustRegister(AdmissionErrors)
	prometheus.MustRegister(CandidatePolicies)
	prometheus.MustRegister(PolicyDefaultsApplied)
	prometheus.MustRegister(PoliciesLoaded)
	prometheus.MustRegister(PolicyReloads)
	prometheus.MustRegister(RateLimited)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
