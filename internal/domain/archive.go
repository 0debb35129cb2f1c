package domain

import "time"

const (
	ArchiveLostItem  = "lost_item"
	ArchiveFoundItem = "found_item"
)

type Archive struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	SubjectType string      `gorm:"size:16;not null;index:idx_archive_subject" json:"subjectType"`
	SubjectID   string      `gorm:"size:20;not null;index:idx_archive_subject" json:"subjectId"`
	Disposition Disposition `gorm:"size:32" json:"disposition,omitempty"`
	ArchivedBy  string      `gorm:"size:36" json:"archivedBy"`
	Date        time.Time   `gorm:"not null" json:"date"`
}

func (Archive) TableName() string { return "archives" }

// Sequence 按年递增的编号计数器（CU2024 / FI2024）
type Sequence struct {
	Name  string `gorm:"primaryKey;size:16"`
	Value int64  `gorm:"not null"`
}

func (Sequence) TableName() string { return "sequences" }

// Models 需要迁移的全部表
func Models() []any {
	return []any{
		&User{}, &Office{}, &LostItem{}, &FoundItem{}, &Match{},
		&Notification{}, &Archive{}, &Sequence{},
	}
}
