package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const AdminUserID = "admin-001"

type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string `gorm:"size:191;not null" json:"-"`
	Role         Role   `gorm:"size:16;not null" json:"role"`
	Credentials  string `gorm:"size:50" json:"credentials,omitempty"`

	// 学生
	MatricNo string `gorm:"size:20;index" json:"matricNo,omitempty"`
	Level    string `gorm:"size:10" json:"level,omitempty"`

	// 职员
	StaffID  string `gorm:"size:20;index" json:"staffId,omitempty"`
	OfficeID string `gorm:"size:10" json:"officeId,omitempty"`
	Position string `gorm:"size:64" json:"position,omitempty"`

	Department string `gorm:"size:100" json:"department,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserFilter struct {
	Q      string
	Role   Role
	Offset int
	Limit  int
}

// RoleForEmail 按邮箱域名推断可注册角色
func RoleForEmail(email string) (Role, bool) {
	e := strings.ToLower(strings.TrimSpace(email))
	switch {
	case strings.HasSuffix(e, StudentEmailDomain):
		return RoleStudent, true
	case strings.HasSuffix(e, StaffEmailDomain):
		return RoleStaff, true
	}
	return "", false
}

type Office struct {
	OfficeID          string `gorm:"primaryKey;size:10" json:"officeId"`
	OfficeName        string `gorm:"size:100;not null" json:"officeName"`
	ContactEmail      string `gorm:"size:100;not null" json:"contactEmail"`
	ResponsiblePerson string `gorm:"size:100;not null" json:"responsiblePerson"`
}

func (Office) TableName() string { return "offices" }

func DefaultOffices() []Office {
	return []Office{
		{OfficeID: "SECURITY", OfficeName: "Security Office", ContactEmail: "security@covenantuniversity.edu.ng", ResponsiblePerson: "Chief Security Officer"},
		{OfficeID: "ADMIN", OfficeName: "Administrative Office", ContactEmail: "admin@covenantuniversity.edu.ng", ResponsiblePerson: "Administrative Officer"},
		{OfficeID: "STUDENT", OfficeName: "Student Affairs", ContactEmail: "studentaffairs@covenantuniversity.edu.ng", ResponsiblePerson: "Student Affairs Officer"},
		{OfficeID: "ICT", OfficeName: "ICT Services", ContactEmail: "ict@covenantuniversity.edu.ng", ResponsiblePerson: "ICT Manager"},
		{OfficeID: "LIBRARY", OfficeName: "Library Office", ContactEmail: "library@covenantuniversity.edu.ng", ResponsiblePerson: "Chief Librarian"},
	}
}
