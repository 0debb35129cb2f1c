package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "culfs/internal/transport/http/response"
)

// Respond 写统一响应，并把业务码留给 Metrics
func Respond(c *gin.Context, r resp.Resp) {
	c.Set(KeyRespCode, r.Code)
	c.JSON(http.StatusOK, r)
}

// Abort 同 Respond，且中断后续处理器
func Abort(c *gin.Context, r resp.Resp) {
	c.Set(KeyRespCode, r.Code)
	c.AbortWithStatusJSON(http.StatusOK, r)
}
