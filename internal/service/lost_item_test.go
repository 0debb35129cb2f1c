package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/datatypes"

	"culfs/internal/domain"
)

const day = 24 * time.Hour

func TestReportLostItemValidation(t *testing.T) {
	f := newFixture(t)
	base := ReportLostItemInput{
		ItemName: "Umbrella", ItemType: "Accessories", Description: "blue umbrella",
		LastSeenDate: "2024-02-28", LastSeenLocation: "Chapel",
	}

	bad := map[string]func(*ReportLostItemInput){
		"itemName":         func(in *ReportLostItemInput) { in.ItemName = " " },
		"itemType":         func(in *ReportLostItemInput) { in.ItemType = "" },
		"description":      func(in *ReportLostItemInput) { in.Description = "" },
		"lastSeenLocation": func(in *ReportLostItemInput) { in.LastSeenLocation = "" },
		"lastSeenDate":     func(in *ReportLostItemInput) { in.LastSeenDate = "28/02/2024" },
	}
	for field, mutate := range bad {
		in := base
		mutate(&in)
		_, err := f.svc.LostItems.ReportLostItem(f.ctx, f.student, in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Errorf("%s: expected validation error on field, got %v", field, err)
		}
	}

	future := base
	future.LastSeenDate = "2024-03-02"
	if _, err := f.svc.LostItems.ReportLostItem(f.ctx, f.student, future); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected future date to be rejected, got %v", err)
	}

	other := base
	other.UserID = f.staff.UserID
	if _, err := f.svc.LostItems.ReportLostItem(f.ctx, f.student, other); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("students cannot report for others, got %v", err)
	}
	item, err := f.svc.LostItems.ReportLostItem(f.ctx, f.admin, other)
	if err != nil {
		t.Fatalf("admin report on behalf: %v", err)
	}
	if item.UserID != f.staff.UserID || item.ReporterName != "Sam Staff" {
		t.Errorf("expected case owned by staff, got %+v", item)
	}
}

func TestCaseNumbersAreSequentialPerYear(t *testing.T) {
	f := newFixture(t)
	a := f.report(f.student, "Laptop Bag")
	b := f.report(f.student, "Umbrella")
	if a.CaseNumber != "CU20240001" || b.CaseNumber != "CU20240002" {
		t.Fatalf("unexpected case numbers %s, %s", a.CaseNumber, b.CaseNumber)
	}

	f.now = time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	c := f.report(f.student, "Keys")
	if c.CaseNumber != "CU20250001" {
		t.Errorf("expected counter to restart per year, got %s", c.CaseNumber)
	}
}

func TestCaseNumberCollisionIsRegenerated(t *testing.T) {
	f := newFixture(t)
	// 预先占用下一个编号
	squatter := &domain.LostItem{
		CaseNumber: "CU20240001", UserID: f.student.UserID, ItemName: "Imported", ItemType: "Other",
		Description: "legacy row", LastSeenDate: datatypes.Date(f.now), LastSeenLocation: "Gate",
		Status: domain.LostReported, DateReported: f.now,
	}
	if err := f.store.LostItems.Create(f.ctx, squatter); err != nil {
		t.Fatalf("seed squatter: %v", err)
	}
	item := f.report(f.student, "Laptop Bag")
	if item.CaseNumber != "CU20240002" {
		t.Errorf("expected regenerated case number, got %s", item.CaseNumber)
	}
}

func TestListLostItemsForUser(t *testing.T) {
	f := newFixture(t)
	first := f.report(f.student, "Laptop Bag")
	f.now = f.now.Add(time.Hour)
	second := f.report(f.student, "Umbrella")
	other := f.registerStudent("john@stu.cu.edu.ng")
	f.report(other, "Keys")

	items, err := f.svc.LostItems.ListLostItemsForUser(f.ctx, f.student, f.student.UserID)
	if err != nil {
		t.Fatalf("ListLostItemsForUser: %v", err)
	}
	if len(items) != 2 || items[0].CaseNumber != second.CaseNumber || items[1].CaseNumber != first.CaseNumber {
		t.Errorf("expected own cases newest first, got %v", items)
	}

	if _, err := f.svc.LostItems.ListLostItemsForUser(f.ctx, other, f.student.UserID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for another student, got %v", err)
	}
	if _, err := f.svc.LostItems.GetLostItem(f.ctx, other, first.CaseNumber); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden on foreign case, got %v", err)
	}
	if _, _, err := f.svc.LostItems.ListAllLostItems(f.ctx, f.student, domain.LostItemFilter{}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected admin-only listing, got %v", err)
	}
	all, total, err := f.svc.LostItems.ListAllLostItems(f.ctx, f.admin, domain.LostItemFilter{Status: domain.LostReported})
	if err != nil || total != 3 || len(all) != 3 {
		t.Errorf("expected 3 reported cases, got %d/%d err=%v", len(all), total, err)
	}
}

func TestMarkAsFound(t *testing.T) {
	f := newFixture(t)
	item := f.report(f.student, "Laptop Bag")

	if _, err := f.svc.LostItems.MarkAsFound(f.ctx, f.student, item.CaseNumber); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected students to be refused, got %v", err)
	}
	got, err := f.svc.LostItems.MarkAsFound(f.ctx, f.staff, item.CaseNumber)
	if err != nil {
		t.Fatalf("MarkAsFound: %v", err)
	}
	if got.Status != domain.LostFound {
		t.Errorf("expected Found, got %s", got.Status)
	}
	if _, err := f.svc.LostItems.MarkAsFound(f.ctx, f.staff, item.CaseNumber); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from Found, got %v", err)
	}
	if _, err := f.svc.LostItems.MarkAsFound(f.ctx, f.staff, "CU20249999"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLostItemByStatus(t *testing.T) {
	f := newFixture(t)
	for i, st := range domain.LostStatuses {
		cn := fmt.Sprintf("CU2024%04d", 100+i)
		err := f.store.LostItems.Create(f.ctx, &domain.LostItem{
			CaseNumber: cn, UserID: f.student.UserID, ItemName: "Phone", ItemType: "Electronics",
			Description: "black phone", LastSeenDate: datatypes.Date(f.now), LastSeenLocation: "Cafeteria",
			Status: st, DateReported: f.now,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", st, err)
		}

		err = f.svc.LostItems.DeleteLostItem(f.ctx, f.student, cn)
		deletable := st == domain.LostReported || st == domain.LostUnclaimed
		switch {
		case deletable && err != nil:
			t.Errorf("%s: expected delete to succeed, got %v", st, err)
		case !deletable && !errors.Is(err, domain.ErrForbiddenTransition):
			t.Errorf("%s: expected ErrForbiddenTransition, got %v", st, err)
		}

		_, getErr := f.store.LostItems.Get(f.ctx, cn)
		if deletable != errors.Is(getErr, domain.ErrNotFound) {
			t.Errorf("%s: deleted=%v but lookup returned %v", st, deletable, getErr)
		}
	}
}

func TestDeleteLostItemRequiresOwner(t *testing.T) {
	f := newFixture(t)
	item := f.report(f.student, "Laptop Bag")
	other := f.registerStudent("john@stu.cu.edu.ng")

	if err := f.svc.LostItems.DeleteLostItem(f.ctx, other, item.CaseNumber); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.LostItems.DeleteLostItem(f.ctx, f.admin, item.CaseNumber); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestArchiveLostItemAgeBoundary(t *testing.T) {
	f := newFixture(t)
	reported := f.now
	item := f.report(f.student, "Laptop Bag")

	f.now = reported.Add(30 * day)
	if _, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.admin, item.CaseNumber); !errors.Is(err, domain.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible at exactly 30 days, got %v", err)
	}

	f.now = reported.Add(31 * day)
	if _, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.staff, item.CaseNumber); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected staff to be refused, got %v", err)
	}
	got, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.admin, item.CaseNumber)
	if err != nil {
		t.Fatalf("ArchiveLostItem at 31 days: %v", err)
	}
	if got.Status != domain.LostArchived || got.ArchivedAt == nil {
		t.Errorf("expected Archived with timestamp, got %s %v", got.Status, got.ArchivedAt)
	}

	if _, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.admin, item.CaseNumber); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("expected archived case to be ineligible, got %v", err)
	}
	recs, err := f.store.Archives.ListBySubject(f.ctx, domain.ArchiveLostItem, item.CaseNumber)
	if err != nil || len(recs) != 1 {
		t.Errorf("expected one archive record, got %d err=%v", len(recs), err)
	}
}

func TestArchiveClaimedCaseIsNotEligible(t *testing.T) {
	f := newFixture(t)
	item := f.report(f.student, "Laptop Bag")
	fi := f.logFound("Laptop Bag", "Black")
	if _, err := f.svc.Matching.Match(f.ctx, f.admin, fi.FoundItemID, item.CaseNumber); err != nil {
		t.Fatalf("Match: %v", err)
	}
	if _, err := f.svc.FoundItems.MarkAsClaimed(f.ctx, f.admin, fi.FoundItemID); err != nil {
		t.Fatalf("MarkAsClaimed: %v", err)
	}

	f.now = f.now.Add(90 * day)
	if _, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.admin, item.CaseNumber); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("expected claimed case to be ineligible, got %v", err)
	}
}

func TestArchiveMatchedCaseReleasesFoundItem(t *testing.T) {
	f := newFixture(t)
	item := f.report(f.student, "Laptop Bag")
	fi := f.logFound("Laptop Bag", "Black")
	if _, err := f.svc.Matching.Match(f.ctx, f.admin, fi.FoundItemID, item.CaseNumber); err != nil {
		t.Fatalf("Match: %v", err)
	}

	f.now = f.now.Add(45 * day)
	if _, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.admin, item.CaseNumber); err != nil {
		t.Fatalf("ArchiveLostItem: %v", err)
	}
	got := f.found(fi.FoundItemID)
	if got.Status != domain.FoundFound || got.MatchedCaseNumber != nil {
		t.Errorf("expected found item released, got %s %v", got.Status, got.MatchedCaseNumber)
	}
	if _, err := f.store.Matches.CurrentByFoundItem(f.ctx, fi.FoundItemID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected match to lapse, got %v", err)
	}
}

func TestArchiveRelinkedCaseReleasesCurrentFoundItem(t *testing.T) {
	f := newFixture(t)
	item := f.report(f.student, "Laptop Bag")
	first := f.logFound("Laptop Bag", "Black")
	second := f.logFound("Laptop Bag", "Black")
	if _, err := f.svc.Matching.Match(f.ctx, f.admin, first.FoundItemID, item.CaseNumber); err != nil {
		t.Fatalf("Match first: %v", err)
	}
	if _, err := f.svc.FoundItems.Unmatch(f.ctx, f.admin, first.FoundItemID); err != nil {
		t.Fatalf("Unmatch: %v", err)
	}
	if _, err := f.svc.Matching.Match(f.ctx, f.admin, second.FoundItemID, item.CaseNumber); err != nil {
		t.Fatalf("Match second: %v", err)
	}

	f.now = f.now.Add(45 * day)
	got, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.admin, item.CaseNumber)
	if err != nil {
		t.Fatalf("ArchiveLostItem: %v", err)
	}
	if got.Status != domain.LostArchived || got.MatchedFoundItemID != nil {
		t.Errorf("expected archived unlinked case, got %s %v", got.Status, got.MatchedFoundItemID)
	}
	for _, id := range []string{first.FoundItemID, second.FoundItemID} {
		if fi := f.found(id); fi.Status != domain.FoundFound || fi.MatchedCaseNumber != nil {
			t.Errorf("%s: expected Found and unlinked, got %s %v", id, fi.Status, fi.MatchedCaseNumber)
		}
	}
	if _, err := f.store.Matches.CurrentByFoundItem(f.ctx, second.FoundItemID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected current match to lapse, got %v", err)
	}
}

func TestArchiveRollsBackWhenFoundItemIsNotMatched(t *testing.T) {
	f := newFixture(t)
	item := f.report(f.student, "Laptop Bag")
	fi := f.logFound("Laptop Bag", "Black")
	if _, err := f.svc.Matching.Match(f.ctx, f.admin, fi.FoundItemID, item.CaseNumber); err != nil {
		t.Fatalf("Match: %v", err)
	}
	// 只改招领一侧，制造两边不一致
	if ok, err := f.store.FoundItems.Transition(f.ctx, fi.FoundItemID, domain.FoundMatched, domain.FoundFound,
		map[string]any{"matched_case_number": nil}); err != nil || !ok {
		t.Fatalf("Transition: %v %v", ok, err)
	}

	f.now = f.now.Add(45 * day)
	if _, err := f.svc.LostItems.ArchiveLostItem(f.ctx, f.admin, item.CaseNumber); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if l := f.lost(item.CaseNumber); l.Status != domain.LostMatched || l.ArchivedAt != nil {
		t.Errorf("expected case unchanged, got %s %v", l.Status, l.ArchivedAt)
	}
	if _, err := f.store.Matches.CurrentByFoundItem(f.ctx, fi.FoundItemID); err != nil {
		t.Errorf("expected pending match kept, got %v", err)
	}
}

func TestSweepArchive(t *testing.T) {
	f := newFixture(t)
	old := f.report(f.student, "Laptop Bag")
	f.now = f.now.Add(20 * day)
	recent := f.report(f.student, "Umbrella")
	f.now = f.now.Add(15 * day)

	done, err := f.svc.LostItems.SweepArchive(f.ctx)
	if err != nil {
		t.Fatalf("SweepArchive: %v", err)
	}
	if len(done) != 1 || done[0] != old.CaseNumber {
		t.Fatalf("expected only %s archived, got %v", old.CaseNumber, done)
	}
	if s := f.lost(recent.CaseNumber).Status; s != domain.LostReported {
		t.Errorf("expected recent case untouched, got %s", s)
	}
}

func TestNotifyReporter(t *testing.T) {
	f := newFixture(t)
	item := f.report(f.student, "Laptop Bag")

	if _, err := f.svc.LostItems.NotifyReporter(f.ctx, f.staff, item.CaseNumber, "  ", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected empty message to fail, got %v", err)
	}
	if _, err := f.svc.LostItems.NotifyReporter(f.ctx, f.student, item.CaseNumber, "hi", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected students to be refused, got %v", err)
	}
	if _, err := f.svc.LostItems.NotifyReporter(f.ctx, f.admin, item.CaseNumber, "hi", domain.NotifMatchFound); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected Match_Found to be reserved, got %v", err)
	}

	if _, err := f.svc.LostItems.NotifyReporter(f.ctx, f.admin, item.CaseNumber, "Please visit the security office", ""); err != nil {
		t.Fatalf("NotifyReporter: %v", err)
	}
	f.now = f.now.Add(time.Minute)
	if _, err := f.svc.LostItems.NotifyReporter(f.ctx, f.staff, item.CaseNumber, "Reminder", domain.NotifClaimReminder); err != nil {
		t.Fatalf("NotifyReporter reminder: %v", err)
	}

	notes, err := f.svc.Notifications.GetNotifications(f.ctx, f.student, f.student.UserID, 0)
	if err != nil {
		t.Fatalf("GetNotifications: %v", err)
	}
	if len(notes) != 2 || notes[0].Type != domain.NotifClaimReminder || notes[1].Type != domain.NotifAdminContact {
		t.Errorf("expected newest first, got %+v", notes)
	}
	if s := f.lost(item.CaseNumber).Status; s != domain.LostReported {
		t.Errorf("notify must not change status, got %s", s)
	}

	other := f.registerStudent("john@stu.cu.edu.ng")
	if _, err := f.svc.Notifications.GetNotifications(f.ctx, other, f.student.UserID, 0); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden reading another feed, got %v", err)
	}
}
