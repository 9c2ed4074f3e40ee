package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/habitboard/habitboard/utils"
)

// RequestID tags every request with a unique id, echoed in the response and
// attached to access log lines.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(utils.ContextRequestIDKey, id)
		ctx.Header("X-Request-ID", id)
		ctx.Next()
	}
}
