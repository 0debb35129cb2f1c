package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"culfs/internal/domain"
	resp "culfs/internal/transport/http/response"
)

const (
	KeySession = "session"
	KeyUserID  = "userId"
	KeyRole    = "role"
	KeyToken   = "token"
)

// Authenticator 校验令牌并返回仍然有效的会话
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Session, error)
}

// AuthJWT 解析 Bearer 令牌，会话写入上下文；角色校验由各路由自行处理
func AuthJWT(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			Abort(c, resp.Fail(resp.CodeUnauthorized, resp.ReasonAuth, "missing token"))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
		sess, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			Abort(c, resp.Fail(resp.CodeUnauthorized, resp.ReasonAuth, "invalid or expired session"))
			return
		}
		c.Set(KeySession, sess)
		c.Set(KeyUserID, sess.UserID)
		c.Set(KeyRole, string(sess.Role))
		c.Set(KeyToken, token)
		c.Next()
	}
}

// SessionFrom 取当前请求的会话；未登录返回零值
func SessionFrom(c *gin.Context) domain.Session {
	v, ok := c.Get(KeySession)
	if !ok {
		return domain.Session{}
	}
	s, _ := v.(domain.Session)
	return s
}
