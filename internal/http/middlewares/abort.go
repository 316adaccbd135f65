package middlewares

import (
	"github.com/geocoder89/parkingcontrol/internal/observability"
	"github.com/gin-gonic/gin"
)

// abortWithError stops the chain with the same error envelope the handlers write.
func abortWithError(ctx *gin.Context, status int, code, message string) {
	body := gin.H{"code": code, "message": message}
	if id, ok := observability.RequestIDFrom(ctx.Request.Context()); ok {
		body["requestId"] = id
	}

	ctx.AbortWithStatusJSON(status, gin.H{"error": body})
}
