package client

import "time"

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	MatricNo   string `json:"matricNo,omitempty"`
	Department string `json:"department,omitempty"`
	Level      string `json:"level,omitempty"`
	StaffID    string `json:"staffId,omitempty"`
	OfficeID   string `json:"officeId,omitempty"`
	Position   string `json:"position,omitempty"`
}

// Session 登录后持有的令牌
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	Role            string `json:"role"`
	Credentials     string `json:"credentials,omitempty"`
	MatricNo        string `json:"matricNo,omitempty"`
	Department      string `json:"department,omitempty"`
	Level           string `json:"level,omitempty"`
	StaffID         string `json:"staffId,omitempty"`
	OfficeID        string `json:"officeId,omitempty"`
	Position        string `json:"position,omitempty"`
}

type LostItem struct {
	CaseNumber         string `json:"caseNumber"`
	UserID             string `json:"userId"`
	ItemName           string `json:"itemName"`
	ItemType           string `json:"itemType"`
	ItemColor          string `json:"itemColor,omitempty"`
	Brand              string `json:"brand,omitempty"`
	Description        string `json:"description"`
	LastSeenDate       string `json:"lastSeenDate"`
	LastSeenLocation   string `json:"lastSeenLocation"`
	Status             string `json:"status"`
	DateReported       string `json:"dateReported"`
	ReporterName       string `json:"reporterName,omitempty"`
	ReporterEmail      string `json:"reporterEmail,omitempty"`
	MatchedFoundItemID string `json:"matchedFoundItemId,omitempty"`
	ArchivedAt         string `json:"archivedAt,omitempty"`
}

type ReportRequest struct {
	UserID           string `json:"userId,omitempty"`
	ItemName         string `json:"itemName"`
	ItemType         string `json:"itemType"`
	ItemColor        string `json:"itemColor,omitempty"`
	Brand            string `json:"brand,omitempty"`
	Description      string `json:"description"`
	LastSeenDate     string `json:"lastSeenDate"`
	LastSeenLocation string `json:"lastSeenLocation"`
}

type FoundItem struct {
	FoundItemID       string `json:"foundItemId"`
	OfficeID          string `json:"officeId"`
	ItemName          string `json:"itemName"`
	ItemColor         string `json:"itemColor"`
	Description       string `json:"description"`
	FoundDate         string `json:"foundDate"`
	FoundLocation     string `json:"foundLocation"`
	Status            string `json:"status"`
	MatchedCaseNumber string `json:"matchedCaseNumber,omitempty"`
	Disposition       string `json:"disposition,omitempty"`
	LoggedAt          string `json:"loggedAt"`
}

type LogFoundRequest struct {
	OfficeID      string `json:"officeId"`
	ItemName      string `json:"itemName"`
	ItemColor     string `json:"itemColor"`
	Description   string `json:"description"`
	FoundDate     string `json:"foundDate"`
	FoundLocation string `json:"foundLocation"`
}

type Match struct {
	ID          string `json:"id"`
	FoundItemID string `json:"foundItemId"`
	CaseNumber  string `json:"caseNumber"`
	Status      string `json:"status"`
	Score       int    `json:"score"`
	MatchedAt   string `json:"matchedAt"`
}

type Candidate struct {
	Case    LostItem `json:"case"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

type Notification struct {
	ID         string `json:"id"`
	CaseNumber string `json:"caseNumber,omitempty"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	Date       string `json:"date"`
}

type Office struct {
	OfficeID          string `json:"officeId"`
	OfficeName        string `json:"officeName"`
	ContactEmail      string `json:"contactEmail"`
	ResponsiblePerson string `json:"responsiblePerson"`
}

type Stats struct {
	TotalReports  int64            `json:"totalReports"`
	TotalFound    int64            `json:"totalFound"`
	TotalMatched  int64            `json:"totalMatched"`
	TotalClaimed  int64            `json:"totalClaimed"`
	LostByStatus  map[string]int64 `json:"lostByStatus"`
	FoundByStatus map[string]int64 `json:"foundByStatus"`
}

// ListOptions 管理端列表筛选
type ListOptions struct {
	Status string
	Page   int
	Size   int
}
