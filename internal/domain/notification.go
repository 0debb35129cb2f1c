package domain

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotifMatchFound    NotificationType = "Match_Found"
	NotifAdminContact  NotificationType = "Admin_Contact"
	NotifClaimReminder NotificationType = "Claim_Reminder"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifMatchFound, NotifAdminContact, NotifClaimReminder:
		return true
	}
	return false
}

type Notification struct {
	ID         string           `gorm:"primaryKey;size:36" json:"id"`
	UserID     string           `gorm:"size:36;index;not null" json:"userId"`
	CaseNumber string           `gorm:"size:20;index" json:"caseNumber,omitempty"`
	Type       NotificationType `gorm:"size:32;not null" json:"type"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	Metadata   datatypes.JSON   `json:"metadata,omitempty"`
	Date       time.Time        `gorm:"index;not null" json:"date"`
}

func (Notification) TableName() string { return "notifications" }
