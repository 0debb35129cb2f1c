package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"culfs/internal/core/auth"
	"culfs/internal/core/database"
	"culfs/internal/domain"
	"culfs/internal/repo"
	"culfs/pkg/utils"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	svc   *Services
	store *repo.Store
	now   time.Time

	admin   domain.Session
	staff   domain.Session
	student domain.Session
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		t:   t,
		ctx: context.Background(),
		now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	o := Options{ArchiveAfter: 30 * 24 * time.Hour, MinScore: 60, AdminEmail: "admin@covenantuniversity.edu.ng"}
	for _, fn := range opts {
		fn(&o)
	}
	sessions := auth.NewMemorySessions()
	sessions.Now = clock
	f.store = repo.NewStore(database.NewTestDB(t))
	f.svc = New(Deps{
		Store:    f.store,
		JWT:      &auth.JWTer{Secret: []byte("test-secret"), Issuer: "culfs", TTL: time.Hour, Now: clock},
		Sessions: sessions,
		Now:      clock,
	}, o)

	f.admin = domain.Session{UserID: domain.AdminUserID, Role: domain.RoleAdmin}
	f.student = f.registerStudent("jane@stu.cu.edu.ng")
	staff, err := f.svc.Identity.RegisterStaff(f.ctx, RegisterInput{
		Name: "Sam Staff", Email: "sam@covenantuniversity.edu.ng", Password: "secret1",
		ConfirmPassword: "secret1", StaffID: "STF001", OfficeID: "security",
	})
	if err != nil {
		t.Fatalf("RegisterStaff: %v", err)
	}
	f.staff = domain.Session{UserID: staff.ID, Role: domain.RoleStaff}
	return f
}

func (f *fixture) registerStudent(email string) domain.Session {
	f.t.Helper()
	u, err := f.svc.Identity.RegisterStudent(f.ctx, RegisterInput{
		Name: "Jane Doe", Email: email, Password: "secret1", ConfirmPassword: "secret1", MatricNo: "21CG0001",
	})
	if err != nil {
		f.t.Fatalf("RegisterStudent(%s): %v", email, err)
	}
	return domain.Session{UserID: u.ID, Role: domain.RoleStudent}
}

func (f *fixture) report(owner domain.Session, name string) *domain.LostItem {
	f.t.Helper()
	item, err := f.svc.LostItems.ReportLostItem(f.ctx, owner, ReportLostItemInput{
		ItemName: name, ItemType: "Bag", ItemColor: "Black", Description: "black bag with a laptop inside",
		LastSeenDate: "2024-02-28", LastSeenLocation: "Computer Lab",
	})
	if err != nil {
		f.t.Fatalf("ReportLostItem: %v", err)
	}
	return item
}

func (f *fixture) logFound(name, color string) *domain.FoundItem {
	f.t.Helper()
	item, err := f.svc.FoundItems.LogFoundItem(f.ctx, f.staff, LogFoundItemInput{
		OfficeID: "SECURITY", ItemName: name, ItemColor: color, Description: "handed in at the front desk",
		FoundDate: "2024-02-29", FoundLocation: "Computer Lab",
	})
	if err != nil {
		f.t.Fatalf("LogFoundItem: %v", err)
	}
	return item
}

func (f *fixture) lost(cn string) *domain.LostItem {
	f.t.Helper()
	item, err := f.store.LostItems.Get(f.ctx, cn)
	if err != nil {
		f.t.Fatalf("get lost item %s: %v", cn, err)
	}
	return item
}

func (f *fixture) found(id string) *domain.FoundItem {
	f.t.Helper()
	item, err := f.store.FoundItems.Get(f.ctx, id)
	if err != nil {
		f.t.Fatalf("get found item %s: %v", id, err)
	}
	return item
}

func TestEndToEndLostAndFound(t *testing.T) {
	f := newFixture(t)

	lost := f.report(f.student, "Laptop Bag")
	if lost.CaseNumber != "CU20240001" || lost.Status != domain.LostReported {
		t.Fatalf("unexpected case %s status %s", lost.CaseNumber, lost.Status)
	}
	if lost.ReporterEmail != "jane@stu.cu.edu.ng" {
		t.Errorf("expected reporter email copied from owner, got %q", lost.ReporterEmail)
	}

	found := f.logFound("Laptop Bag", "Black")
	if found.FoundItemID != "FI20240001" || found.Status != domain.FoundFound {
		t.Fatalf("unexpected found item %s status %s", found.FoundItemID, found.Status)
	}

	if _, err := f.svc.FoundItems.MatchWithCase(f.ctx, f.admin, found.FoundItemID, lost.CaseNumber); err != nil {
		t.Fatalf("MatchWithCase: %v", err)
	}
	if s := f.lost(lost.CaseNumber).Status; s != domain.LostMatched {
		t.Errorf("expected case Matched, got %s", s)
	}
	if s := f.found(found.FoundItemID).Status; s != domain.FoundMatched {
		t.Errorf("expected found item Matched, got %s", s)
	}

	if _, err := f.svc.FoundItems.MarkAsClaimed(f.ctx, f.admin, found.FoundItemID); err != nil {
		t.Fatalf("MarkAsClaimed: %v", err)
	}
	if s := f.lost(lost.CaseNumber).Status; s != domain.LostClaimed {
		t.Errorf("expected case Claimed, got %s", s)
	}
	if s := f.found(found.FoundItemID).Status; s != domain.FoundClaimed {
		t.Errorf("expected found item Claimed, got %s", s)
	}

	notes, err := f.svc.Notifications.GetNotifications(f.ctx, f.student, f.student.UserID, 0)
	if err != nil {
		t.Fatalf("GetNotifications: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes))
	}
	if notes[0].CaseNumber != lost.CaseNumber || notes[0].Type != domain.NotifMatchFound {
		t.Errorf("unexpected notification %+v", notes[0])
	}
}

func TestRegisterStudentValidation(t *testing.T) {
	f := newFixture(t)
	valid := RegisterInput{
		Name: "Ada", Email: "ada@stu.cu.edu.ng", Password: "secret1", ConfirmPassword: "secret1", MatricNo: "21CG0002",
	}

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"staff domain", func(in *RegisterInput) { in.Email = "ada@covenantuniversity.edu.ng" }, "email"},
		{"foreign domain", func(in *RegisterInput) { in.Email = "ada@gmail.com" }, "email"},
		{"bare suffix", func(in *RegisterInput) { in.Email = "@stu.cu.edu.ng" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" }, "password"},
		{"confirm mismatch", func(in *RegisterInput) { in.ConfirmPassword = "secret2" }, "confirmPassword"},
		{"missing matric", func(in *RegisterInput) { in.MatricNo = "" }, "matricNo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := f.svc.Identity.RegisterStudent(f.ctx, in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}

	if _, err := f.store.Users.FindByEmail(f.ctx, "ada@gmail.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("rejected registration must not create an account, got %v", err)
	}

	u, err := f.svc.Identity.Register(f.ctx, RegisterInput{
		Name: valid.Name, Email: "ADA@stu.cu.edu.ng", Password: valid.Password, MatricNo: valid.MatricNo,
		Role: domain.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != domain.RoleStudent || u.Email != "ada@stu.cu.edu.ng" {
		t.Errorf("unexpected user %+v", u)
	}
	if _, err := f.svc.Identity.RegisterStudent(f.ctx, valid); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}
	if _, err := f.svc.Identity.Register(f.ctx, RegisterInput{Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("admin must not be self-registrable, got %v", err)
	}
}

func TestRegisterStaffRequiresKnownOffice(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Identity.RegisterStaff(f.ctx, RegisterInput{
		Name: "Tim", Email: "tim@covenantuniversity.edu.ng", Password: "secret1", StaffID: "STF002", OfficeID: "NOPE",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = f.svc.Identity.RegisterStaff(f.ctx, RegisterInput{
		Name: "Root", Email: "admin@covenantuniversity.edu.ng", Password: "secret1", StaffID: "STF003",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected reserved admin email to be rejected, got %v", err)
	}
}

func TestLoginSessionLifecycle(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Identity.Login(f.ctx, "jane@stu.cu.edu.ng", "wrong-pw"); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth for bad password, got %v", err)
	}
	if _, err := f.svc.Identity.Login(f.ctx, "nobody@stu.cu.edu.ng", "secret1"); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth for unknown user, got %v", err)
	}

	res, err := f.svc.Identity.Login(f.ctx, " Jane@stu.cu.edu.ng ", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != f.student.UserID || res.Session.Role != domain.RoleStudent {
		t.Errorf("unexpected login result %+v", res.Session)
	}
	if !res.Session.ExpiresAt.Equal(f.now.Add(time.Hour)) {
		t.Errorf("expected expiry one hour out, got %s", res.Session.ExpiresAt)
	}

	sess, err := f.svc.Identity.Authenticate(f.ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	me, err := f.svc.Identity.Me(f.ctx, sess)
	if err != nil || me.Email != "jane@stu.cu.edu.ng" {
		t.Fatalf("Me: %v %+v", err, me)
	}

	if err := f.svc.Identity.Logout(f.ctx, sess); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.Identity.Authenticate(f.ctx, res.Token); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("expected logged-out token to be rejected, got %v", err)
	}
}

func TestLoginReservedAdmin(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Identity.Login(f.ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login admin alias: %v", err)
	}
	if res.User.ID != domain.AdminUserID || res.Session.Role != domain.RoleAdmin {
		t.Errorf("unexpected admin session %+v", res.Session)
	}
	if _, err := f.svc.Identity.Login(f.ctx, "admin", "nope"); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("expected ErrAuth for wrong admin password, got %v", err)
	}
}

func TestLoginRejectsUnrecognisedDomain(t *testing.T) {
	f := newFixture(t)
	// 直接写库，模拟历史数据里的外部邮箱
	hash, err := utils.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := f.store.Users.Create(f.ctx, &domain.User{
		ID: "legacy-1", Name: "Legacy", Email: "legacy@gmail.com", PasswordHash: hash, Role: domain.RoleStudent,
	}); err != nil {
		t.Fatalf("create legacy user: %v", err)
	}
	if _, err := f.svc.Identity.Login(f.ctx, "legacy@gmail.com", "secret1"); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}

func TestStatsSummary(t *testing.T) {
	f := newFixture(t)
	a := f.report(f.student, "Laptop Bag")
	f.report(f.student, "Umbrella")
	fi := f.logFound("Laptop Bag", "Black")
	if _, err := f.svc.Matching.Match(f.ctx, f.admin, fi.FoundItemID, a.CaseNumber); err != nil {
		t.Fatalf("Match: %v", err)
	}

	if _, err := f.svc.Stats.Summary(f.ctx, f.student); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected students to be refused, got %v", err)
	}
	sum, err := f.svc.Stats.Summary(f.ctx, f.admin)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalReports != 2 || sum.TotalFound != 1 || sum.TotalMatched != 1 || sum.TotalClaimed != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.LostByStatus[domain.LostReported] != 1 {
		t.Errorf("expected one Reported case, got %v", sum.LostByStatus)
	}
}
