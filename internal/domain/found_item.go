package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Disposition string

const (
	DispositionDonated         Disposition = "Donated"
	DispositionDisposed        Disposition = "Disposed"
	DispositionReturnedToOwner Disposition = "Returned_to_Owner"
)

func (d Disposition) Valid() bool {
	switch d {
	case DispositionDonated, DispositionDisposed, DispositionReturnedToOwner:
		return true
	}
	return false
}

type FoundItem struct {
	FoundItemID   string         `gorm:"primaryKey;size:20" json:"foundItemId"`
	OfficeID      string         `gorm:"size:10;index;not null" json:"officeId"`
	LoggedBy      string         `gorm:"size:36" json:"loggedBy"`
	ItemName      string         `gorm:"size:100;not null" json:"itemName"`
	ItemColor     string         `gorm:"size:50;not null" json:"itemColor"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	FoundDate     datatypes.Date `gorm:"not null" json:"foundDate"`
	FoundLocation string         `gorm:"size:100;not null" json:"foundLocation"`
	Status        FoundStatus    `gorm:"size:16;index;not null" json:"status"`

	MatchedCaseNumber *string     `gorm:"size:20;index" json:"matchedCaseNumber,omitempty"`
	Disposition       Disposition `gorm:"size:32" json:"disposition,omitempty"`

	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

func (FoundItem) TableName() string { return "found_items" }

type FoundItemFilter struct {
	Status FoundStatus
	Offset int
	Limit  int
}
