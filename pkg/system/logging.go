package system

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReqLoggerKey is the context key used to store the request-scoped logger in
// the gin context.
const ReqLoggerKey = "reqLogger"

// GetReqLogger returns the request-scoped sugared logger from gin.Context if
// present, otherwise the provided fallback.
func GetReqLogger(c *gin.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return fallback
	}
	if v, ok := c.Get(ReqLoggerKey); ok {
		if l, ok2 := v.(*zap.SugaredLogger); ok2 {
			return l
		}
	}
	return fallback
}

// EnrichReqLoggerWithIdentity annotates the request-scoped logger with the
// acting identity of an admission request. The full group list is debug-only.
func EnrichReqLoggerWithIdentity(reqLogger *zap.SugaredLogger, user string, groups []string) *zap.SugaredLogger {
	if reqLogger == nil {
		return reqLogger
	}
	if user != "" {
		reqLogger = reqLogger.With("user", user)
	}
	if len(groups) > 0 {
		reqLogger = reqLogger.With("groupCount", len(groups))
		reqLogger.Debugw("Request identity groups", "groups", groups)
	}
	return reqLogger
}

// NamespacedFields returns key/value pairs suitable for SugaredLogger.With
// or Infow calls. If namespace is empty only the "name" key is included.
func NamespacedFields(name, namespace string) []interface{} {
	if namespace == "" {
		return []interface{}{"name", name}
	}
	return []interface{}{"name", name, "namespace", namespace}
}
