package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LostItem struct {
	CaseNumber       string         `gorm:"primaryKey;size:20" json:"caseNumber"`
	UserID           string         `gorm:"size:36;index;not null" json:"userId"`
	ItemName         string         `gorm:"size:100;not null" json:"itemName"`
	ItemType         string         `gorm:"size:50;not null" json:"itemType"`
	ItemColor        string         `gorm:"size:50" json:"itemColor"`
	Brand            string         `gorm:"size:50" json:"brand"`
	Description      string         `gorm:"type:text;not null" json:"description"`
	LastSeenDate     datatypes.Date `gorm:"not null" json:"lastSeenDate"`
	LastSeenLocation string         `gorm:"size:100;not null" json:"lastSeenLocation"`
	Status           LostStatus     `gorm:"size:16;index;not null" json:"status"`
	ReporterName     string         `gorm:"size:100" json:"reporterName"`
	ReporterEmail    string         `gorm:"size:191" json:"reporterEmail"`

	MatchedFoundItemID *string `gorm:"size:20;index" json:"matchedFoundItemId,omitempty"`

	DateReported time.Time      `gorm:"index;not null" json:"dateReported"`
	ArchivedAt   *time.Time     `json:"archivedAt,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LostItem) TableName() string { return "lost_items" }

// AgeAt 自报案起经过的时长
func (l *LostItem) AgeAt(now time.Time) time.Duration { return now.Sub(l.DateReported) }

type LostItemFilter struct {
	UserID string
	Status LostStatus
	Offset int
	Limit  int
}
