package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"culfs/internal/core/config"
	"culfs/internal/core/server"
	"culfs/internal/service"
	"culfs/internal/transport/http/ez"
	"culfs/internal/transport/http/handler"
	mdw "culfs/internal/transport/http/middleware"
	resp "culfs/internal/transport/http/response"
)

type Deps struct {
	Log      *zap.Logger
	Env      string
	DB       *gorm.DB
	Services *service.Services
	Limits   config.Limits
}

func withDefaults(l config.Limits) config.Limits {
	if l.RPS <= 0 {
		l.RPS, l.Burst = 200, 400
	}
	if l.LoginRPS <= 0 {
		l.LoginRPS, l.LoginBurst = 1, 10
	}
	if l.MaxConcurrent <= 0 {
		l.MaxConcurrent = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.RequestTimeoutSec <= 0 {
		l.RequestTimeoutSec = 10
	}
	return l
}

func NewAPIEngine(d Deps) *gin.Engine {
	lim := withDefaults(d.Limits)
	r := server.NewRouter(d.Log, d.Env)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log, "/health", "/metrics"),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		mdw.Respond(c, resp.Fail(resp.CodeNotFound, resp.ReasonNotFound, "route not found"))
	})

	api := r.Group("/api")
	authed := api.Group("", mdw.AuthJWT(d.Services.Identity))
	admin := api.Group("/admin", mdw.AuthJWT(d.Services.Identity))

	svc := d.Services
	var reg Registry
	reg.MustRegister(
		&handler.AuthHandler{Identity: svc.Identity, LoginLimit: mdw.RateLimitPerIP(rate.Limit(lim.LoginRPS), lim.LoginBurst)},
		&handler.UserHandler{Identity: svc.Identity},
		&handler.LostItemHandler{LostItems: svc.LostItems, Matching: svc.Matching},
		&handler.FoundItemHandler{FoundItems: svc.FoundItems, Matching: svc.Matching},
		&handler.NotificationHandler{Notifications: svc.Notifications},
		&handler.AdminHandler{Stats: svc.Stats, DB: d.DB},
	)
	reg.MountAPI(ez.New(api, d.Log), ez.New(authed, d.Log))
	reg.MountAdmin(ez.New(admin, d.Log))

	return r
}
