package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"culfs/internal/domain"
	"culfs/internal/service"
	"culfs/internal/transport/http/ez"
)

type AuthHandler struct {
	Identity *service.IdentityService
	// LoginLimit 挂在 /login 上的限流中间件（可为空）
	LoginLimit gin.HandlerFunc
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginOut struct {
	User      *UserView `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type registerIn struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
	Credentials     string `json:"credentials"`
	MatricNo        string `json:"matricNo"`
	Department      string `json:"department"`
	Level           string `json:"level"`
	StaffID         string `json:"staffId"`
	OfficeID        string `json:"officeId"`
	Position        string `json:"position"`
}

type registerOut struct {
	UserID string    `json:"user_id"`
	User   *UserView `json:"user"`
}

type userOut struct {
	User *UserView `json:"user"`
}

func (h *AuthHandler) MountAPI(public, authed ez.EZ) {
	var limit []gin.HandlerFunc
	if h.LoginLimit != nil {
		limit = append(limit, h.LoginLimit)
	}
	ez.RegisterAction(public, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost, Path: "/login", Binder: ez.BindJSON, Message: "Login successful",
		Handler: func(c *gin.Context, _ domain.Session, in *loginIn) (loginOut, error) {
			res, err := h.Identity.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{User: userView(res.User), Token: res.Token, ExpiresAt: res.Session.ExpiresAt}, nil
		},
	}, limit...)

	ez.RegisterAction(public, ez.Action[registerIn, registerOut]{
		Method: http.MethodPost, Path: "/register", Binder: ez.BindJSON, Message: "Registration successful",
		Handler: func(c *gin.Context, _ domain.Session, in *registerIn) (registerOut, error) {
			u, err := h.Identity.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password, ConfirmPassword: in.ConfirmPassword,
				Role: domain.Role(in.Role), Credentials: in.Credentials,
				MatricNo: in.MatricNo, Department: in.Department, Level: in.Level,
				StaffID: in.StaffID, OfficeID: in.OfficeID, Position: in.Position,
			})
			if err != nil {
				return registerOut{}, err
			}
			return registerOut{UserID: u.ID, User: userView(u)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, struct{}]{
		Method: http.MethodPost, Path: "/logout", Auth: true, Message: "Logged out",
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (struct{}, error) {
			return struct{}{}, h.Identity.Logout(c.Request.Context(), s)
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, userOut]{
		Method: http.MethodGet, Path: "/me", Auth: true,
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (userOut, error) {
			u, err := h.Identity.Me(c.Request.Context(), s)
			if err != nil {
				return userOut{}, err
			}
			return userOut{User: userView(u)}, nil
		},
	})
}
