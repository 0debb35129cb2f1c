package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"culfs/internal/core/auth"
	"culfs/internal/domain"
	"culfs/pkg/utils"
)

const (
	adminAlias     = "admin"
	minPasswordLen = 6
	defaultOffice  = "ADMIN"
)

type IdentityService struct {
	*base
	jwt        *auth.JWTer
	sessions   auth.SessionStore
	adminEmail string
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            domain.Role
	Credentials     string

	MatricNo   string
	Department string
	Level      string

	StaffID  string
	OfficeID string
	Position string
}

type LoginResult struct {
	User    *domain.User
	Session domain.Session
	Token   string
}

// Login 校验凭证并开启会话；保留管理员不受邮箱域名限制
func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = utils.NormalizeEmail(email)
	if email == adminAlias && s.adminEmail != "" {
		email = s.adminEmail
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("missing email or password: %w", domain.ErrAuth)
	}

	u, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAuth
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrAuth
	}
	if u.Role != domain.RoleAdmin {
		if _, ok := domain.RoleForEmail(u.Email); !ok {
			return nil, fmt.Errorf("unrecognised email domain: %w", domain.ErrAuth)
		}
	}

	sess := domain.Session{UserID: u.ID, Role: u.Role, SessionID: utils.NewID()}
	token, exp, err := s.jwt.Issue(sess)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	sess.ExpiresAt = exp
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.log.Info("login", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return &LoginResult{User: u, Session: sess, Token: token}, nil
}

// Authenticate 解析令牌并确认会话未注销
func (s *IdentityService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	sess := claims.Session()
	ok, err := s.sessions.Exists(ctx, sess.SessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return domain.Session{}, fmt.Errorf("session ended: %w", domain.ErrAuth)
	}
	return sess, nil
}

func (s *IdentityService) Logout(ctx context.Context, sess domain.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sess.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info("logout", zap.String("user_id", sess.UserID))
	return nil
}

func (s *IdentityService) Me(ctx context.Context, sess domain.Session) (*domain.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.store.Users.FindByID(ctx, sess.UserID)
}

// Register 按 role 分派到学生或职员注册
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	switch in.Role {
	case domain.RoleStudent:
		return s.RegisterStudent(ctx, in)
	case domain.RoleStaff:
		return s.RegisterStaff(ctx, in)
	}
	return nil, domain.Invalid("role", "must be student or staff")
}

func (s *IdentityService) RegisterStudent(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Role = domain.RoleStudent
	if err := s.validateAccount(in, domain.StudentEmailDomain); err != nil {
		return nil, err
	}
	if err := required([2]string{"matricNo", in.MatricNo}); err != nil {
		return nil, err
	}
	u := &domain.User{
		MatricNo:   strings.TrimSpace(in.MatricNo),
		Department: strings.TrimSpace(in.Department),
		Level:      strings.TrimSpace(in.Level),
	}
	return s.create(ctx, in, u)
}

func (s *IdentityService) RegisterStaff(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Role = domain.RoleStaff
	if err := s.validateAccount(in, domain.StaffEmailDomain); err != nil {
		return nil, err
	}
	if err := required([2]string{"staffId", in.StaffID}); err != nil {
		return nil, err
	}
	office := strings.ToUpper(strings.TrimSpace(in.OfficeID))
	if office == "" {
		office = defaultOffice
	}
	ok, err := s.store.Offices.Exists(ctx, office)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Invalid("officeId", "unknown office")
	}
	u := &domain.User{
		StaffID:    strings.TrimSpace(in.StaffID),
		OfficeID:   office,
		Position:   strings.TrimSpace(in.Position),
		Department: strings.TrimSpace(in.Department),
	}
	return s.create(ctx, in, u)
}

func (s *IdentityService) validateAccount(in RegisterInput, suffix string) error {
	if err := required([2]string{"name", in.Name}, [2]string{"email", in.Email}); err != nil {
		return err
	}
	email := utils.NormalizeEmail(in.Email)
	if !strings.HasSuffix(email, suffix) || len(email) == len(suffix) {
		return domain.Invalid("email", "must end with "+suffix)
	}
	if email == s.adminEmail {
		return domain.Invalid("email", "reserved")
	}
	if len(in.Password) < minPasswordLen {
		return domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return domain.Invalid("confirmPassword", "does not match password")
	}
	return nil
}

func (s *IdentityService) create(ctx context.Context, in RegisterInput, u *domain.User) (*domain.User, error) {
	email := utils.NormalizeEmail(in.Email)
	if _, err := s.store.Users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s: %w", email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.ID = utils.NewID()
	u.Name = strings.TrimSpace(in.Name)
	u.Email = email
	u.PasswordHash = hash
	u.Role = in.Role
	u.Credentials = strings.TrimSpace(in.Credentials)
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// ListUsers 管理端用户列表
func (s *IdentityService) ListUsers(ctx context.Context, actor domain.Session, f domain.UserFilter) ([]domain.User, int64, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	if f.Role != "" && !f.Role.Valid() {
		return nil, 0, domain.Invalid("role", "unknown role "+string(f.Role))
	}
	f.Limit = clampLimit(f.Limit)
	return s.store.Users.List(ctx, f)
}
