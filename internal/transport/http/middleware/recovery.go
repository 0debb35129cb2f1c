package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "culfs/internal/transport/http/response"
)

// Recovery panic 时按统一响应返回；堆栈只进日志
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.String("rid", RequestIDFrom(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				Abort(c, resp.Fail(resp.CodeServerError, resp.ReasonInternal, ""))
			}
		}()
		c.Next()
	}
}
