package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes rejects bodies larger than limit. A declared Content-Length over the limit
// is refused up front; otherwise the body is wrapped so the read that crosses the limit
// fails with *http.MaxBytesError, which BindJSON answers with the same 413.
// A limit of zero or less disables the check.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	return func(ctx *gin.Context) {
		req := ctx.Request
		if req.Body == nil || req.Body == http.NoBody {
			ctx.Next()
			return
		}

		if req.ContentLength > limit {
			abortWithError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large")
			return
		}

		req.Body = http.MaxBytesReader(ctx.Writer, req.Body, limit)
		ctx.Next()
	}
}
