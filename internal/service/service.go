package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"culfs/internal/core/auth"
	"culfs/internal/core/cache"
	"culfs/internal/domain"
	"culfs/internal/repo"
	"culfs/pkg/utils"
)

const (
	dateLayout    = "2006-01-02"
	maxIDAttempts = 5
	defaultLimit  = 50
	maxLimit      = 200
)

type Options struct {
	ArchiveAfter time.Duration // 报案超过该时长才可归档
	AutoMatch    bool          // 登记招领物品时自动关联唯一候选
	MinScore     int           // 候选最低分
	StatsTTL     time.Duration
	AdminEmail   string // 保留管理员邮箱，登录时 "admin" 的别名
}

type Deps struct {
	Store    *repo.Store
	Log      *zap.Logger
	JWT      *auth.JWTer
	Sessions auth.SessionStore
	Cache    *cache.Cache     // 可为 nil
	Now      func() time.Time // 可为 nil
}

// Services 全部业务服务，由 cmd 组装后交给路由
type Services struct {
	Identity      *IdentityService
	LostItems     *LostItemService
	FoundItems    *FoundItemService
	Matching      *MatchingService
	Notifications *NotificationService
	Stats         *StatsService
}

func New(d Deps, o Options) *Services {
	if o.ArchiveAfter <= 0 {
		o.ArchiveAfter = 30 * 24 * time.Hour
	}
	if o.MinScore <= 0 {
		o.MinScore = 60
	}
	b := &base{store: d.Store, log: d.Log, now: d.Now, cache: d.Cache}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.now == nil {
		b.now = time.Now
	}
	m := &MatchingService{base: b, minScore: o.MinScore}
	return &Services{
		Identity:      &IdentityService{base: b, jwt: d.JWT, sessions: d.Sessions, adminEmail: utils.NormalizeEmail(o.AdminEmail)},
		LostItems:     &LostItemService{base: b, archiveAfter: o.ArchiveAfter},
		FoundItems:    &FoundItemService{base: b, matching: m, autoMatch: o.AutoMatch},
		Matching:      m,
		Notifications: &NotificationService{base: b},
		Stats:         &StatsService{base: b, ttl: o.StatsTTL},
	}
}

type base struct {
	store *repo.Store
	log   *zap.Logger
	now   func() time.Time
	cache *cache.Cache
}

// nextID 分配 <prefix><year><seq> 编号；计数器在独立事务里推进，失败的编号不复用
func (b *base) nextID(ctx context.Context, prefix string, year int) (string, error) {
	var seq int64
	err := b.store.Tx(ctx, func(tx *repo.Store) error {
		v, err := tx.Sequences.Next(ctx, fmt.Sprintf("%s%d", prefix, year))
		seq = v
		return err
	})
	if err != nil {
		return "", err
	}
	return utils.SerialID(prefix, year, seq), nil
}

// createWithID 主键冲突时重新分配编号，最多 maxIDAttempts 次
func (b *base) createWithID(ctx context.Context, prefix string, create func(id string) error) (string, error) {
	year := b.now().Year()
	for i := 0; i < maxIDAttempts; i++ {
		id, err := b.nextID(ctx, prefix, year)
		if err != nil {
			return "", err
		}
		err = create(id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return "", err
		}
		b.log.Warn("id collision, regenerating", zap.String("id", id))
	}
	return "", fmt.Errorf("allocate %s id: %w", prefix, domain.ErrConflict)
}

func (b *base) invalidateStats(ctx context.Context) { b.cache.Invalidate(ctx, statsKey) }

func requireSession(s domain.Session) error {
	if s.UserID == "" {
		return fmt.Errorf("no session: %w", domain.ErrAuth)
	}
	return nil
}

func requireRole(s domain.Session, roles ...domain.Role) error {
	if err := requireSession(s); err != nil {
		return err
	}
	if !s.HasRole(roles...) {
		return fmt.Errorf("role %s: %w", s.Role, domain.ErrForbidden)
	}
	return nil
}

func requireOwner(s domain.Session, ownerID string) error {
	if err := requireSession(s); err != nil {
		return err
	}
	if !s.CanAccess(ownerID) {
		return fmt.Errorf("not the owner: %w", domain.ErrForbidden)
	}
	return nil
}

// parseDate 解析 YYYY-MM-DD，不接受未来日期
func parseDate(field, v string, now time.Time) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, domain.Invalid(field, "expected YYYY-MM-DD")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return time.Time{}, domain.Invalid(field, "date is in the future")
	}
	return d, nil
}

// required 返回第一个为空的字段
func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return domain.Invalid(f[0], "is required")
		}
	}
	return nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultLimit
	case n > maxLimit:
		return maxLimit
	}
	return n
}
