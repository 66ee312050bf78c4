// Package authorizer resolves which policies an identity may use. The
// underlying yes/no binding check is delegated to a PolicyAuthorizer
// collaborator (a SubjectAccessReview against the cluster in production,
// a static map in tests); this package owns only the aggregation and the
// deterministic candidate ordering.
package authorizer
