// Package webhook exposes the admission engine to the Kubernetes admission
// framework: it decodes AdmissionReview requests for pod creation, runs the
// evaluation, and answers with the decision plus the selected-policy
// annotation patch for admitted pods.
package webhook
