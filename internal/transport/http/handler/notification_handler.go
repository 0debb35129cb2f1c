package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"culfs/internal/domain"
	"culfs/internal/service"
	"culfs/internal/transport/http/ez"
)

type NotificationHandler struct {
	Notifications *service.NotificationService
}

type notificationsQuery struct {
	Limit int `form:"limit"`
}

type notificationsOut struct {
	Notifications []NotificationView `json:"notifications"`
}

func (h *NotificationHandler) MountAPI(_, authed ez.EZ) {
	ez.RegisterAction(authed, ez.Action[notificationsQuery, notificationsOut]{
		Method: http.MethodGet, Path: "/notifications/:userId", Binder: ez.BindQuery, Auth: true,
		Handler: func(c *gin.Context, s domain.Session, q *notificationsQuery) (notificationsOut, error) {
			ns, err := h.Notifications.GetNotifications(c.Request.Context(), s, c.Param("userId"), q.Limit)
			if err != nil {
				return notificationsOut{}, err
			}
			out := make([]NotificationView, len(ns))
			for i := range ns {
				out[i] = notificationView(&ns[i])
			}
			return notificationsOut{Notifications: out}, nil
		},
	})
}
