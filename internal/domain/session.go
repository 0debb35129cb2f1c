package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool { return r == RoleStudent || r == RoleStaff || r == RoleAdmin }

const (
	StudentEmailDomain = "@stu.cu.edu.ng"
	StaffEmailDomain   = "@covenantuniversity.edu.ng"
)

// Session 已认证的调用方，由中间件构造后显式传给每个服务调用
type Session struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SystemSession 内部任务（自动匹配、归档清理）使用的身份
func SystemSession() Session { return Session{UserID: "system", Role: RoleAdmin} }

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

func (s Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// CanAccess 资源属主或管理员
func (s Session) CanAccess(ownerID string) bool {
	return s.IsAdmin() || (s.UserID != "" && s.UserID == ownerID)
}
