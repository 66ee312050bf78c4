package webhook

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	admissionv1 "k8s.io/api/admission/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/telekom/k8s-podsec-admission/pkg/admission"
	"github.com/telekom/k8s-podsec-admission/pkg/apiresponses"
	"github.com/telekom/k8s-podsec-admission/pkg/audit"
	"github.com/telekom/k8s-podsec-admission/pkg/authorizer"
	"github.com/telekom/k8s-podsec-admission/pkg/metrics"
	"github.com/telekom/k8s-podsec-admission/pkg/ratelimit"
	"github.com/telekom/k8s-podsec-admission/pkg/request"
	"github.com/telekom/k8s-podsec-admission/pkg/system"
)

// ReviewController serves the admission review endpoint.
type ReviewController struct {
	log     *zap.SugaredLogger
	engine  *admission.Engine
	auditor *audit.Service
	limiter *ratelimit.ClientRateLimiter
}

// NewReviewController creates the controller. auditor may be nil.
func NewReviewController(log *zap.SugaredLogger, engine *admission.Engine, auditor *audit.Service) *ReviewController {
	return &ReviewController{
		log:     log,
		engine:  engine,
		auditor: auditor,
		limiter: ratelimit.New(ratelimit.DefaultReviewConfig()),
	}
}

// BasePath implements api.APIController.
func (ReviewController) BasePath() string {
	return "podsecurity"
}

// Register implements api.APIController.
func (rc *ReviewController) Register(rg *gin.RouterGroup) error {
	rg.POST("/review", rc.handleReview)
	return nil
}

// Handlers implements api.APIController.
func (rc *ReviewController) Handlers() []gin.HandlerFunc {
	return []gin.HandlerFunc{rc.limiter.Middleware()}
}

func (rc *ReviewController) handleReview(c *gin.Context) {
	ctx := c.Request.Context()
	log := system.GetReqLogger(c, rc.log)

	review := admissionv1.AdmissionReview{}
	if err := json.NewDecoder(c.Request.Body).Decode(&review); err != nil {
		log.Warnw("Failed to decode admission review", "error", err)
		apiresponses.RespondUnprocessable(c, "body is not an AdmissionReview")
		return
	}
	req := review.Request
	if req == nil {
		apiresponses.RespondUnprocessable(c, "AdmissionReview carries no request")
		return
	}

	if req.Operation != admissionv1.Create || req.Resource.Resource != "pods" || req.SubResource != "" {
		// only pod creation is evaluated; everything else passes through untouched
		c.JSON(http.StatusOK, responseFor(&review, allowedResponse(req.UID, "")))
		return
	}

	pod := corev1.Pod{}
	if err := json.Unmarshal(req.Object.Raw, &pod); err != nil {
		log.Warnw("Failed to unmarshal pod from admission request", "uid", req.UID, "error", err)
		c.JSON(http.StatusOK, responseFor(&review, erroredResponse(req.UID, "could not decode pod object")))
		return
	}

	id := authorizer.Identity{Name: req.UserInfo.Username, Groups: req.UserInfo.Groups}
	log = system.EnrichReqLoggerWithIdentity(log, id.Name, id.Groups)

	proj := request.FromPod(&pod)
	proj.Namespace = req.Namespace

	metrics.AdmissionRequests.WithLabelValues(req.Namespace).Inc()

	actor := audit.Actor{User: id.Name, Groups: id.Groups}
	target := audit.Target{Namespace: req.Namespace, Pod: pod.Name}

	result, err := rc.engine.Admit(ctx, id, req.Namespace, proj)
	if err != nil {
		metrics.AdmissionErrors.WithLabelValues(req.Namespace).Inc()
		rc.auditor.Record(ctx, audit.NewErrorEvent(actor, target, err))
		log.Errorw("Admission evaluation failed", "pod", proj.Subject(), "error", err)
		c.JSON(http.StatusOK, responseFor(&review, erroredResponse(req.UID, "authorization check failed")))
		return
	}

	rc.auditor.Record(ctx, audit.NewDecisionEvent(actor, target, result))

	switch result.Outcome {
	case admission.OutcomeAdmitted:
		metrics.AdmissionAdmitted.WithLabelValues(req.Namespace, result.SelectedPolicy).Inc()
		if len(result.Defaults) > 0 {
			metrics.PolicyDefaultsApplied.WithLabelValues(result.SelectedPolicy).Inc()
		}
		resp := allowedResponse(req.UID, result.SelectedPolicy)
		if patch, err := annotationPatch(&pod, result.Annotations()); err == nil && patch != nil {
			pt := admissionv1.PatchTypeJSONPatch
			resp.Patch = patch
			resp.PatchType = &pt
		}
		c.JSON(http.StatusOK, responseFor(&review, resp))
	case admission.OutcomeCancelled:
		metrics.AdmissionCancelled.WithLabelValues(req.Namespace).Inc()
		c.JSON(http.StatusOK, responseFor(&review, deniedResponse(req.UID, result.Message())))
	default:
		metrics.AdmissionDenied.WithLabelValues(req.Namespace, denialReasonLabel(result)).Inc()
		c.JSON(http.StatusOK, responseFor(&review, deniedResponse(req.UID, result.Message())))
	}
}

// denialReasonLabel keeps metric label cardinality low: either no policy was
// authorized or every candidate rejected the request.
func denialReasonLabel(result admission.Result) string {
	if result.Reason == admission.ReasonNoPolicyAuthorized {
		return "unauthorized"
	}
	return "no_match"
}

func responseFor(review *admissionv1.AdmissionReview, resp *admissionv1.AdmissionResponse) *admissionv1.AdmissionReview {
	return &admissionv1.AdmissionReview{
		TypeMeta: metav1.TypeMeta{
			APIVersion: review.APIVersion,
			Kind:       review.Kind,
		},
		Response: resp,
	}
}

func allowedResponse(uid types.UID, selectedPolicy string) *admissionv1.AdmissionResponse {
	resp := &admissionv1.AdmissionResponse{UID: uid, Allowed: true}
	if selectedPolicy != "" {
		resp.AuditAnnotations = map[string]string{
			admission.SelectedPolicyAnnotation: selectedPolicy,
		}
	}
	return resp
}

func deniedResponse(uid types.UID, message string) *admissionv1.AdmissionResponse {
	return &admissionv1.AdmissionResponse{
		UID:     uid,
		Allowed: false,
		Result: &metav1.Status{
			Status:  metav1.StatusFailure,
			Reason:  metav1.StatusReasonForbidden,
			Message: message,
			Code:    http.StatusForbidden,
		},
	}
}

func erroredResponse(uid types.UID, message string) *admissionv1.AdmissionResponse {
	return &admissionv1.AdmissionResponse{
		UID:     uid,
		Allowed: false,
		Result: &metav1.Status{
			Status:  metav1.StatusFailure,
			Message: message,
			Code:    http.StatusInternalServerError,
		},
	}
}

// annotationPatch builds the JSON patch attaching the selected-policy
// annotation to the pod being created.
func annotationPatch(pod *corev1.Pod, annotations map[string]string) ([]byte, error) {
	if len(annotations) == 0 {
		return nil, nil
	}

	type patchOp struct {
		Op    string      `json:"op"`
		Path  string      `json:"path"`
		Value interface{} `json:"value"`
	}

	var ops []patchOp
	if pod.Annotations == nil {
		ops = append(ops, patchOp{Op: "add", Path: "/metadata/annotations", Value: annotations})
	} else {
		for k, v := range annotations {
			ops = append(ops, patchOp{Op: "add", Path: "/metadata/annotations/" + escapeJSONPointer(k), Value: v})
		}
	}
	return json.Marshal(ops)
}

// escapeJSONPointer escapes a map key per RFC 6901.
func escapeJSONPointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
