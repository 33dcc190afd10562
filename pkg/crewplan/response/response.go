// Package response defines the uniform API response envelope.
package response

import "github.com/gin-gonic/gin"

// Envelope is the response body shape shared by all endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK writes a success envelope with the given status and data.
func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail writes a failure envelope with the given status and message.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
	})
}

// FailWithError writes a failure envelope including error detail. Callers
// must only pass detail safe to expose (non-production mode).
func FailWithError(c *gin.Context, status int, message, detail string) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
