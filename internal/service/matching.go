package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"culfs/internal/domain"
	"culfs/internal/repo"
	"culfs/pkg/utils"
)

// 评分权重
const (
	scoreName     = 40
	scoreColor    = 25
	scoreLocation = 15
	scoreType     = 10
	scoreDate     = 10
)

type MatchingService struct {
	*base
	minScore int
}

// Match 在同一事务内关联招领物品与失物报案：两边同时变为 Matched，否则都不变
func (s *MatchingService) Match(ctx context.Context, actor domain.Session, foundItemID, caseNumber string) (*domain.Match, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := required([2]string{"foundItemId", foundItemID}, [2]string{"caseNumber", caseNumber}); err != nil {
		return nil, err
	}
	return s.link(ctx, actor, foundItemID, caseNumber, 0)
}

func (s *MatchingService) link(ctx context.Context, actor domain.Session, foundItemID, caseNumber string, score int) (*domain.Match, error) {
	now := s.now()
	var (
		m             *domain.Match
		fromF         domain.FoundStatus
		fromL         domain.LostStatus
		alreadyLinked = func(entity, id, status, other string) error {
			return &domain.StateError{
				Kind: domain.ErrAlreadyMatched, Entity: entity, ID: id, Status: status, Detail: "linked to " + other,
			}
		}
	)
	err := s.store.Tx(ctx, func(tx *repo.Store) error {
		f, err := tx.FoundItems.GetForUpdate(ctx, foundItemID)
		if err != nil {
			return err
		}
		l, err := tx.LostItems.GetForUpdate(ctx, caseNumber)
		if err != nil {
			return err
		}
		if f.Status == domain.FoundMatched {
			return alreadyLinked("found item", f.FoundItemID, string(f.Status), deref(f.MatchedCaseNumber))
		}
		if l.Status == domain.LostMatched {
			return alreadyLinked("lost item", l.CaseNumber, string(l.Status), deref(l.MatchedFoundItemID))
		}
		if err := domain.FoundTransition(f.FoundItemID, f.Status, domain.FoundMatched); err != nil {
			return err
		}
		if err := domain.LostTransition(l.CaseNumber, l.Status, domain.LostMatched); err != nil {
			return err
		}
		fromF, fromL = f.Status, l.Status

		// 条件更新未命中说明并发请求已抢先关联
		ok, err := tx.FoundItems.Transition(ctx, foundItemID, f.Status, domain.FoundMatched,
			map[string]any{"matched_case_number": caseNumber})
		if err != nil {
			return err
		}
		if !ok {
			return alreadyLinked("found item", foundItemID, string(domain.FoundMatched), "another case")
		}
		ok, err = tx.LostItems.Transition(ctx, caseNumber, l.Status, domain.LostMatched,
			map[string]any{"matched_found_item_id": foundItemID})
		if err != nil {
			return err
		}
		if !ok {
			return alreadyLinked("lost item", caseNumber, string(domain.LostMatched), "another found item")
		}

		m = &domain.Match{
			ID: utils.NewID(), FoundItemID: foundItemID, CaseNumber: caseNumber,
			Status: domain.MatchPending, Score: score, MatchedBy: actor.UserID, CreatedAt: now,
		}
		if err := tx.Matches.Create(ctx, m); err != nil {
			return err
		}
		_, err = appendNotification(ctx, tx, now, l.UserID, caseNumber, domain.NotifMatchFound,
			fmt.Sprintf("Potential match found for %s (case %s). Please contact the Lost and Found office to verify and claim it.",
				l.ItemName, caseNumber),
			map[string]any{"foundItemId": foundItemID, "officeId": f.OfficeID})
		return err
	})
	if err != nil {
		matchesTotal.WithLabelValues(matchResult(err)).Inc()
		return nil, err
	}
	matchesTotal.WithLabelValues("linked").Inc()
	countFound(fromF, domain.FoundMatched)
	countLost(fromL, domain.LostMatched)
	s.invalidateStats(ctx)
	s.log.Info("match created",
		zap.String("found_item_id", foundItemID), zap.String("case_number", caseNumber),
		zap.Int("score", score), zap.String("by", actor.UserID))
	return m, nil
}

func matchResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyMatched):
		return "already_matched"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// Candidates 为招领物品给出按分数排序的候选案件
func (s *MatchingService) Candidates(ctx context.Context, actor domain.Session, foundItemID string, limit int) ([]domain.Candidate, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleStaff); err != nil {
		return nil, err
	}
	f, err := s.store.FoundItems.Get(ctx, foundItemID)
	if err != nil {
		return nil, err
	}
	out, err := s.candidates(ctx, f)
	if err != nil {
		return nil, err
	}
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MatchingService) candidates(ctx context.Context, f *domain.FoundItem) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0)
	if f.Status != domain.FoundFound {
		return out, nil
	}
	cases, err := s.store.LostItems.ListByStatus(ctx, domain.LostReported, domain.LostFound)
	if err != nil {
		return nil, err
	}
	for _, l := range cases {
		if score, reasons := Score(f, &l); score > 0 {
			out = append(out, domain.Candidate{Case: l, Score: score, Reasons: reasons})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// strong 名称相符且分数不低于阈值的候选
func (s *MatchingService) strong(cands []domain.Candidate) []domain.Candidate {
	var out []domain.Candidate
	for _, c := range cands {
		if c.Score >= s.minScore && len(c.Reasons) > 0 && c.Reasons[0] == "name" {
			out = append(out, c)
		}
	}
	return out
}

// Score 计算相似度；丢失日期晚于拾获日期的案件不可能匹配，记 0 分
func Score(f *domain.FoundItem, l *domain.LostItem) (int, []string) {
	if time.Time(l.LastSeenDate).After(time.Time(f.FoundDate)) {
		return 0, nil
	}
	var (
		score   int
		reasons []string
	)
	fn, ln := norm(f.ItemName), norm(l.ItemName)
	if fn != "" && ln != "" && (strings.Contains(fn, ln) || strings.Contains(ln, fn)) {
		score += scoreName
		reasons = append(reasons, "name")
	}
	if c := norm(f.ItemColor); c != "" && c == norm(l.ItemColor) {
		score += scoreColor
		reasons = append(reasons, "color")
	}
	if loc := norm(f.FoundLocation); loc != "" && loc == norm(l.LastSeenLocation) {
		score += scoreLocation
		reasons = append(reasons, "location")
	}
	if t := norm(l.ItemType); t != "" && strings.Contains(fn, t) {
		score += scoreType
		reasons = append(reasons, "type")
	}
	if score > 0 {
		score += scoreDate
		reasons = append(reasons, "date")
	}
	return score, reasons
}

// MatchForFoundItem 从招领物品一侧查询当前关联
func (s *MatchingService) MatchForFoundItem(ctx context.Context, actor domain.Session, foundItemID string) (*domain.Match, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleStaff); err != nil {
		return nil, err
	}
	if _, err := s.store.FoundItems.Get(ctx, foundItemID); err != nil {
		return nil, err
	}
	return s.store.Matches.CurrentByFoundItem(ctx, foundItemID)
}

// MatchForCase 从失物报案一侧查询当前关联
func (s *MatchingService) MatchForCase(ctx context.Context, actor domain.Session, caseNumber string) (*domain.Match, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	l, err := s.store.LostItems.Get(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(domain.RoleStaff) {
		if err := requireOwner(actor, l.UserID); err != nil {
			return nil, err
		}
	}
	return s.store.Matches.CurrentByCase(ctx, caseNumber)
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
