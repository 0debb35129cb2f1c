package domain

import "time"

type MatchStatus string

const (
	MatchPending   MatchStatus = "Pending"
	MatchConfirmed MatchStatus = "Confirmed"
	MatchRejected  MatchStatus = "Rejected"
	MatchLapsed    MatchStatus = "Lapsed"
)

// Match 招领物品与失物报案的关联；Pending/Confirmed 为当前有效关联
type Match struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	FoundItemID string      `gorm:"size:20;index;not null" json:"foundItemId"`
	CaseNumber  string      `gorm:"size:20;index;not null" json:"caseNumber"`
	Status      MatchStatus `gorm:"size:16;not null" json:"status"`
	Score       int         `json:"score"`
	MatchedBy   string      `gorm:"size:36" json:"matchedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	ResolvedAt  *time.Time  `json:"resolvedAt,omitempty"`
}

func (Match) TableName() string { return "matches" }

// Candidate 匹配候选及评分
type Candidate struct {
	Case    LostItem `json:"case"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
