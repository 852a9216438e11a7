package response

import "github.com/gin-gonic/gin"

// ErrorBody is the flat error payload returned by every failing endpoint.
// Details carries per-field validation messages when present.
type ErrorBody struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Err writes a flat JSON error and stops further handlers.
func Err(c *gin.Context, status int, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: message, Details: details})
}

// OK writes body as-is with the given status.
func OK(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}
