package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culfs/internal/core/auth"
	"culfs/internal/core/database"
	"culfs/internal/repo"
	"culfs/internal/service"
	"culfs/internal/transport/http/router"
	"culfs/pkg/client"
)

func newServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := database.NewTestDB(t)
	svc := service.New(service.Deps{
		Store:    repo.NewStore(db),
		Log:      zap.NewNop(),
		JWT:      &auth.JWTer{Secret: []byte("test-secret"), Issuer: "culfs", TTL: time.Hour},
		Sessions: auth.NewMemorySessions(),
	}, service.Options{AdminEmail: "admin@covenantuniversity.edu.ng"})
	srv := httptest.NewServer(router.NewAPIEngine(router.Deps{Log: zap.NewNop(), Env: "test", DB: db, Services: svc}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)

	student := client.New(url)
	uid, err := student.Register(ctx, client.RegisterRequest{
		Name: "Jane Doe", Email: "jane@stu.cu.edu.ng", Password: "secret1", ConfirmPassword: "secret1",
		Role: "student", MatricNo: "21CG0001", Department: "Computer Science", Level: "300",
	})
	if err != nil || uid == "" {
		t.Fatalf("Register: %q %v", uid, err)
	}
	if _, err := student.Me(ctx); !errors.Is(err, client.ErrAuth) {
		t.Fatalf("Me before login: want ErrAuth, got %v", err)
	}
	sess, err := student.Login(ctx, "jane@stu.cu.edu.ng", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token == "" || sess.User.ID != uid || student.Session() != sess {
		t.Fatalf("unexpected session %+v", sess)
	}

	item, err := student.ReportLostItem(ctx, client.ReportRequest{
		ItemName: "Laptop Bag", ItemType: "Bag", ItemColor: "Black",
		Description: "black bag with a laptop inside", LastSeenDate: "2024-02-28", LastSeenLocation: "Computer Lab",
	})
	if err != nil {
		t.Fatalf("ReportLostItem: %v", err)
	}
	if item.Status != "Reported" || item.LastSeenDate != "2024-02-28" {
		t.Errorf("unexpected item %+v", item)
	}
	_, err = student.ReportLostItem(ctx, client.ReportRequest{ItemName: "x"})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 400 || !errors.Is(err, client.ErrValidation) {
		t.Fatalf("want validation APIError, got %v", err)
	}
	if items, err := student.ListLostItems(ctx, uid); err != nil || len(items) != 1 {
		t.Fatalf("ListLostItems: %v %v", items, err)
	}
	if _, err := student.MatchForCase(ctx, item.CaseNumber); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("MatchForCase before match: want ErrNotFound, got %v", err)
	}

	admin := client.New(url, client.WithTimeout(5*time.Second))
	if _, err := admin.Login(ctx, "admin", "admin"); err != nil {
		t.Fatalf("admin Login: %v", err)
	}
	found, err := admin.LogFoundItem(ctx, client.LogFoundRequest{
		OfficeID: "SECURITY", ItemName: "Laptop Bag", ItemColor: "Black",
		Description: "found near the lab", FoundDate: "2024-03-01", FoundLocation: "Computer Lab",
	})
	if err != nil {
		t.Fatalf("LogFoundItem: %v", err)
	}
	if _, err := student.LogFoundItem(ctx, client.LogFoundRequest{ItemName: "x"}); !errors.Is(err, client.ErrForbidden) {
		t.Fatalf("student LogFoundItem: want ErrForbidden, got %v", err)
	}
	cands, err := admin.Candidates(ctx, found.FoundItemID, 5)
	if err != nil || len(cands) == 0 || cands[0].Case.CaseNumber != item.CaseNumber {
		t.Fatalf("Candidates: %+v %v", cands, err)
	}
	m, err := admin.MatchWithCase(ctx, found.FoundItemID, item.CaseNumber)
	if err != nil || m.CaseNumber != item.CaseNumber {
		t.Fatalf("MatchWithCase: %+v %v", m, err)
	}
	if _, err := admin.MatchWithCase(ctx, found.FoundItemID, item.CaseNumber); !errors.Is(err, client.ErrAlreadyMatched) {
		t.Fatalf("second match: want ErrAlreadyMatched, got %v", err)
	}
	if m, err := student.MatchForCase(ctx, item.CaseNumber); err != nil || m == nil || m.FoundItemID != found.FoundItemID {
		t.Fatalf("MatchForCase: %+v %v", m, err)
	}
	notes, err := student.Notifications(ctx, uid, 10)
	if err != nil || len(notes) != 1 || notes[0].Type != "Match_Found" {
		t.Fatalf("Notifications: %+v %v", notes, err)
	}

	if _, err := admin.MarkAsClaimed(ctx, found.FoundItemID); err != nil {
		t.Fatalf("MarkAsClaimed: %v", err)
	}
	if _, err := admin.MarkAsClaimed(ctx, found.FoundItemID); !errors.Is(err, client.ErrInvalidTransition) {
		t.Fatalf("second claim: want ErrInvalidTransition, got %v", err)
	}
	if err := student.DeleteLostItem(ctx, item.CaseNumber); !errors.Is(err, client.ErrForbiddenTransition) {
		t.Fatalf("delete claimed case: want ErrForbiddenTransition, got %v", err)
	}
	arch, err := admin.ArchiveFoundItem(ctx, found.FoundItemID, "Returned_to_Owner")
	if err != nil || arch.Status != "Archived" || arch.Disposition != "Returned_to_Owner" {
		t.Fatalf("ArchiveFoundItem: %+v %v", arch, err)
	}

	stats, err := admin.Stats(ctx)
	if err != nil || stats.TotalReports != 1 || stats.TotalClaimed != 1 {
		t.Fatalf("Stats: %+v %v", stats, err)
	}
	if _, total, err := admin.AllLostItems(ctx, client.ListOptions{Status: "Claimed"}); err != nil || total != 1 {
		t.Fatalf("AllLostItems: %d %v", total, err)
	}
	if offices, err := admin.Offices(ctx); err != nil || len(offices) != 5 {
		t.Fatalf("Offices: %d %v", len(offices), err)
	}
	if users, _, err := admin.Users(ctx, "jane", "", 0, 0); err != nil || len(users) != 1 {
		t.Fatalf("Users: %+v %v", users, err)
	}

	if err := student.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if student.Session() != nil {
		t.Error("Logout should clear the session")
	}
}

func TestRestoredSessionIsRevokedAfterLogout(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)

	c := client.New(url)
	sess, err := c.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	other := client.New(url)
	other.SetSession(sess)
	if u, err := other.Me(ctx); err != nil || u.Role != "admin" {
		t.Fatalf("Me with restored session: %+v %v", u, err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := other.Me(ctx); !errors.Is(err, client.ErrAuth) {
		t.Fatalf("Me after logout: want ErrAuth, got %v", err)
	}
}

func TestNetworkErrors(t *testing.T) {
	ctx := context.Background()

	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer html.Close()
	if _, err := client.New(html.URL).Me(ctx); !errors.Is(err, client.ErrNetwork) {
		t.Errorf("undecodable body: want ErrNetwork, got %v", err)
	}

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	_, err := client.New(slow.URL, client.WithTimeout(50*time.Millisecond)).Me(ctx)
	if !errors.Is(err, client.ErrNetwork) {
		t.Errorf("timeout: want ErrNetwork, got %v", err)
	}

	dead := httptest.NewServer(http.NotFoundHandler())
	addr := dead.URL
	dead.Close()
	if _, err := client.New(addr).Me(ctx); !errors.Is(err, client.ErrNetwork) {
		t.Errorf("closed server: want ErrNetwork, got %v", err)
	}
}

func TestWithHTTPClientLeavesCallerClientAlone(t *testing.T) {
	ctx := context.Background()
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	shared := &http.Client{}
	c := client.New(slow.URL, client.WithHTTPClient(shared), client.WithTimeout(50*time.Millisecond))
	if _, err := c.Me(ctx); !errors.Is(err, client.ErrNetwork) {
		t.Errorf("timeout: want ErrNetwork, got %v", err)
	}
	if shared.Timeout != 0 {
		t.Errorf("caller client timeout changed to %v", shared.Timeout)
	}

	_ = client.New(slow.URL, client.WithHTTPClient(http.DefaultClient))
	if http.DefaultClient.Timeout != 0 {
		t.Errorf("default client timeout changed to %v", http.DefaultClient.Timeout)
	}

	down := httptest.NewServer(http.NotFoundHandler())
	addr := down.URL
	down.Close()
	if _, err := client.New(addr, client.WithHTTPClient(nil)).Me(ctx); !errors.Is(err, client.ErrNetwork) {
		t.Errorf("nil http client: want ErrNetwork, got %v", err)
	}
}

func TestAPIErrorIs(t *testing.T) {
	err := error(&client.APIError{Code: 409, Reason: "already_matched", Message: "Found item is already matched"})
	if !errors.Is(err, client.ErrAlreadyMatched) || errors.Is(err, client.ErrConflict) {
		t.Errorf("reason mapping wrong for %v", err)
	}
	if errors.Is(&client.APIError{Code: 500, Reason: "internal"}, client.ErrNetwork) {
		t.Error("internal errors are not network errors")
	}
}
