package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "culfs/internal/transport/http/response"
)

// Timeout 给请求 ctx 设截止时间；处理器未写出响应时回 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			Abort(c, resp.Fail(resp.CodeTimeout, resp.ReasonTimeout, ""))
		}
	}
}
