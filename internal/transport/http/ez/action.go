package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culfs/internal/domain"
	"culfs/internal/transport/http/middleware"
	resp "culfs/internal/transport/http/response"
)

// EZ 路由分组的轻封装，统一绑定、鉴权、错误映射
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

func (e EZ) Group() *gin.RouterGroup { return e.g }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 处理器内部直接指定响应码
type AErr struct {
	Code   int
	Reason string
	Msg    string
	Err    error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error {
	return &AErr{Code: resp.CodeBadRequest, Reason: resp.ReasonValidation, Msg: msg}
}

// Action 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string        // "GET" | "POST" | "PUT" | "DELETE"
	Path    string        // 例："/login"、"/found-items/:id/match"
	Binder  Binder        // 绑定方式
	Auth    bool          // 是否要求登录
	Roles   []domain.Role // 限定角色（可选）
	Message string        // 成功提示
	Handler func(c *gin.Context, s domain.Session, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O], mw ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		sess := middleware.SessionFrom(c)
		if a.Auth || len(a.Roles) > 0 {
			if sess.UserID == "" {
				middleware.Respond(c, resp.Fail(resp.CodeUnauthorized, resp.ReasonAuth, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !sess.HasRole(a.Roles...) {
				middleware.Respond(c, resp.Fail(resp.CodeForbidden, resp.ReasonForbidden, "forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			if middleware.IsBodyTooLarge(bindErr) {
				middleware.Respond(c, resp.Fail(resp.CodeTooLarge, resp.ReasonTooLarge, "request body too large"))
				return
			}
			middleware.Respond(c, resp.Fail(resp.CodeBadRequest, resp.ReasonValidation, bindMessage(bindErr)))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, sess, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		middleware.Respond(c, resp.OKMsg(a.Message, out))
	}

	handlers := append(append([]gin.HandlerFunc{}, mw...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

// Fail 按错误类别写响应；500 只记日志不回显细节
func (e EZ) Fail(c *gin.Context, err error) {
	r := FromError(err)
	if r.Code == resp.CodeServerError {
		e.log.Error("request failed",
			zap.String("rid", middleware.RequestIDFrom(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	middleware.Respond(c, r)
}

// FromError 领域错误 → code/reason
func FromError(err error) resp.Resp {
	var ae *AErr
	if errors.As(err, &ae) {
		return resp.Fail(ae.Code, ae.Reason, ae.Error())
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return resp.Fail(resp.CodeBadRequest, resp.ReasonValidation, ve.Error())
	}
	type kind struct {
		target error
		code   int
		reason string
	}
	for _, k := range []kind{
		{domain.ErrValidation, resp.CodeBadRequest, resp.ReasonValidation},
		{domain.ErrAuth, resp.CodeUnauthorized, resp.ReasonAuth},
		{domain.ErrForbidden, resp.CodeForbidden, resp.ReasonForbidden},
		{domain.ErrNotFound, resp.CodeNotFound, resp.ReasonNotFound},
		{domain.ErrInvalidTransition, resp.CodeConflict, resp.ReasonInvalidTransition},
		{domain.ErrForbiddenTransition, resp.CodeConflict, resp.ReasonForbiddenTransition},
		{domain.ErrAlreadyMatched, resp.CodeConflict, resp.ReasonAlreadyMatched},
		{domain.ErrConflict, resp.CodeConflict, resp.ReasonConflict},
		{domain.ErrNotEligible, resp.CodeUnprocessable, resp.ReasonNotEligible},
	} {
		if errors.Is(err, k.target) {
			return resp.Fail(k.code, k.reason, err.Error())
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resp.Fail(resp.CodeTimeout, resp.ReasonTimeout, "")
	}
	return resp.Fail(resp.CodeServerError, resp.ReasonInternal, "")
}

func bindMessage(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "EOF") {
		return "request body is required"
	}
	return msg
}
