package apiresponses

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError represents a standardized error response.
// This ensures consistent error message formatting across all API endpoints.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondUnprocessable sends a 422 response for requests whose body could
// not be decoded into the expected shape.
func RespondUnprocessable(c *gin.Context, details string) {
	c.JSON(http.StatusUnprocessableEntity, APIError{
		Error:   "request body could not be processed",
		Code:    "UNPROCESSABLE",
		Details: details,
	})
}

// RespondTooManyRequests sends a 429 response and aborts the request chain.
func RespondTooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, APIError{
		Error: "Rate limit exceeded, please try again later",
		Code:  "RATE_LIMITED",
	})
}
