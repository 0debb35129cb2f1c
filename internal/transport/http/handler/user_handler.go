package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"culfs/internal/domain"
	"culfs/internal/service"
	"culfs/internal/transport/http/ez"
)

type UserHandler struct {
	Identity *service.IdentityService
}

type usersQuery struct {
	Q      string `form:"q"`
	Role   string `form:"role"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

type usersOut struct {
	Items []*UserView `json:"items"`
	Total int64       `json:"total"`
}

func (h *UserHandler) MountAdmin(admin ez.EZ) {
	ez.RegisterAction(admin, ez.Action[usersQuery, usersOut]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery, Roles: adminOnly,
		Handler: func(c *gin.Context, s domain.Session, q *usersQuery) (usersOut, error) {
			us, total, err := h.Identity.ListUsers(c.Request.Context(), s, domain.UserFilter{
				Q: q.Q, Role: domain.Role(q.Role), Offset: q.Offset, Limit: q.Limit,
			})
			if err != nil {
				return usersOut{}, err
			}
			out := usersOut{Items: make([]*UserView, len(us)), Total: total}
			for i := range us {
				out.Items[i] = userView(&us[i])
			}
			return out, nil
		},
	})
}
