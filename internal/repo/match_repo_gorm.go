package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"culfs/internal/domain"
)

type MatchRepo struct{ db *gorm.DB }

func NewMatchRepo(db *gorm.DB) *MatchRepo { return &MatchRepo{db: db} }

func (r *MatchRepo) Create(ctx context.Context, m *domain.Match) error {
	return translate(r.db.WithContext(ctx).Create(m).Error, "match", m.ID)
}

var liveMatch = []domain.MatchStatus{domain.MatchPending, domain.MatchConfirmed}

// CurrentByFoundItem 当前有效（Pending/Confirmed）的关联
func (r *MatchRepo) CurrentByFoundItem(ctx context.Context, foundItemID string) (*domain.Match, error) {
	return r.current(ctx, "found_item_id = ?", foundItemID)
}

func (r *MatchRepo) CurrentByCase(ctx context.Context, caseNumber string) (*domain.Match, error) {
	return r.current(ctx, "case_number = ?", caseNumber)
}

func (r *MatchRepo) current(ctx context.Context, cond string, id string) (*domain.Match, error) {
	var m domain.Match
	err := r.db.WithContext(ctx).Where(cond, id).Where("status IN ?", liveMatch).
		Order("created_at DESC").First(&m).Error
	if err != nil {
		return nil, translate(err, "match", id)
	}
	return &m, nil
}

// Resolve 把 Pending 关联置为终态（Confirmed/Rejected/Lapsed）
func (r *MatchRepo) Resolve(ctx context.Context, foundItemID string, to domain.MatchStatus, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Match{}).
		Where("found_item_id = ? AND status = ?", foundItemID, domain.MatchPending).
		Updates(map[string]any{"status": to, "resolved_at": at}).Error
}

func (r *MatchRepo) History(ctx context.Context, foundItemID string) ([]domain.Match, error) {
	out := make([]domain.Match, 0)
	err := r.db.WithContext(ctx).Where("found_item_id = ?", foundItemID).
		Order("created_at DESC").Find(&out).Error
	return out, err
}
