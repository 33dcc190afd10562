package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request correlation id.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// RequestID returns a middleware that assigns every request a correlation
// id. An id supplied by the client is kept so upstream proxies can trace
// calls end to end.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the correlation id assigned to the request,
// or an empty string if the RequestID middleware did not run.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
