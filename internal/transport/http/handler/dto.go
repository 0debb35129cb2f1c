package handler

import (
	"time"

	"culfs/internal/domain"
)

const dateLayout = "2006-01-02"

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

type UserView struct {
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

func userView(u *domain.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role),
		MatricNo: u.MatricNo, Department: u.Department, Level: u.Level,
		StaffID: u.StaffID, OfficeID: u.OfficeID, Position: u.Position,
	}
}

type LostItemView struct {
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

func lostItemView(l *domain.LostItem) LostItemView {
	v := LostItemView{
		CaseNumber: l.CaseNumber, UserID: l.UserID,
		ItemName: l.ItemName, ItemType: l.ItemType, ItemColor: l.ItemColor, Brand: l.Brand,
		Description:      l.Description,
		LastSeenDate:     day(time.Time(l.LastSeenDate)),
		LastSeenLocation: l.LastSeenLocation,
		Status:           string(l.Status),
		DateReported:     day(l.DateReported),
		ReporterName:     l.ReporterName, ReporterEmail: l.ReporterEmail,
	}
	if l.MatchedFoundItemID != nil {
		v.MatchedFoundItemID = *l.MatchedFoundItemID
	}
	if l.ArchivedAt != nil {
		v.ArchivedAt = day(*l.ArchivedAt)
	}
	return v
}

func lostItemViews(items []domain.LostItem) []LostItemView {
	out := make([]LostItemView, len(items))
	for i := range items {
		out[i] = lostItemView(&items[i])
	}
	return out
}

type FoundItemView struct {
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

func foundItemView(f *domain.FoundItem) FoundItemView {
	v := FoundItemView{
		FoundItemID: f.FoundItemID, OfficeID: f.OfficeID,
		ItemName: f.ItemName, ItemColor: f.ItemColor, Description: f.Description,
		FoundDate:     day(time.Time(f.FoundDate)),
		FoundLocation: f.FoundLocation,
		Status:        string(f.Status),
		Disposition:   string(f.Disposition),
		LoggedAt:      day(f.CreatedAt),
	}
	if f.MatchedCaseNumber != nil {
		v.MatchedCaseNumber = *f.MatchedCaseNumber
	}
	return v
}

func foundItemViews(items []domain.FoundItem) []FoundItemView {
	out := make([]FoundItemView, len(items))
	for i := range items {
		out[i] = foundItemView(&items[i])
	}
	return out
}

type MatchView struct {
	ID          string `json:"id"`
	FoundItemID string `json:"foundItemId"`
	CaseNumber  string `json:"caseNumber"`
	Status      string `json:"status"`
	Score       int    `json:"score"`
	MatchedAt   string `json:"matchedAt"`
}

func matchView(m *domain.Match) *MatchView {
	if m == nil {
		return nil
	}
	return &MatchView{
		ID: m.ID, FoundItemID: m.FoundItemID, CaseNumber: m.CaseNumber,
		Status: string(m.Status), Score: m.Score, MatchedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type CandidateView struct {
	Case    LostItemView `json:"case"`
	Score   int          `json:"score"`
	Reasons []string     `json:"reasons"`
}

func candidateViews(cs []domain.Candidate) []CandidateView {
	out := make([]CandidateView, len(cs))
	for i := range cs {
		out[i] = CandidateView{Case: lostItemView(&cs[i].Case), Score: cs[i].Score, Reasons: cs[i].Reasons}
	}
	return out
}

type NotificationView struct {
	ID         string `json:"id"`
	CaseNumber string `json:"caseNumber,omitempty"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	Date       string `json:"date"`
}

func notificationView(n *domain.Notification) NotificationView {
	return NotificationView{
		ID: n.ID, CaseNumber: n.CaseNumber, Type: string(n.Type), Message: n.Message,
		Date: n.Date.UTC().Format(time.RFC3339),
	}
}
