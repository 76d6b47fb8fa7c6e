package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
	"github.com/noah-isme/student-risk-api/pkg/response"
)

// BodyLimit caps the request body at limit bytes. Requests announcing a larger
// Content-Length are rejected up front; others fail when the reader crosses the
// limit and handlers see *http.MaxBytesError.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
