package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"culfs/internal/domain"
	"culfs/internal/repo"
	"culfs/pkg/utils"
)

type FoundItemService struct {
	*base
	matching  *MatchingService
	autoMatch bool
}

type LogFoundItemInput struct {
	OfficeID      string
	ItemName      string
	ItemColor     string
	Description   string
	FoundDate     string // YYYY-MM-DD
	FoundLocation string
}

// LogFoundItem 登记招领物品；开启 autoMatch 且只有一个强候选时自动关联
func (s *FoundItemService) LogFoundItem(ctx context.Context, actor domain.Session, in LogFoundItemInput) (*domain.FoundItem, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleStaff); err != nil {
		return nil, err
	}
	if err := required(
		[2]string{"itemName", in.ItemName},
		[2]string{"itemColor", in.ItemColor},
		[2]string{"description", in.Description},
		[2]string{"foundDate", in.FoundDate},
		[2]string{"foundLocation", in.FoundLocation},
		[2]string{"officeId", in.OfficeID},
	); err != nil {
		return nil, err
	}
	now := s.now()
	found, err := parseDate("foundDate", in.FoundDate, now)
	if err != nil {
		return nil, err
	}
	office := strings.ToUpper(strings.TrimSpace(in.OfficeID))
	ok, err := s.store.Offices.Exists(ctx, office)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Invalid("officeId", "unknown office")
	}

	item := &domain.FoundItem{
		OfficeID:      office,
		LoggedBy:      actor.UserID,
		ItemName:      strings.TrimSpace(in.ItemName),
		ItemColor:     strings.TrimSpace(in.ItemColor),
		Description:   strings.TrimSpace(in.Description),
		FoundDate:     datatypes.Date(found),
		FoundLocation: strings.TrimSpace(in.FoundLocation),
		Status:        domain.FoundFound,
		CreatedAt:     now,
	}
	_, err = s.createWithID(ctx, "FI", func(id string) error {
		item.FoundItemID = id
		return s.store.FoundItems.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	s.log.Info("found item logged", zap.String("found_item_id", item.FoundItemID), zap.String("office", office))

	if s.autoMatch {
		s.tryAutoMatch(ctx, item)
		return s.store.FoundItems.Get(ctx, item.FoundItemID)
	}
	return item, nil
}

// tryAutoMatch 失败只记日志，登记本身已成功
func (s *FoundItemService) tryAutoMatch(ctx context.Context, item *domain.FoundItem) {
	cands, err := s.matching.candidates(ctx, item)
	if err != nil {
		s.log.Warn("auto match candidates", zap.String("found_item_id", item.FoundItemID), zap.Error(err))
		return
	}
	strong := s.matching.strong(cands)
	if len(strong) != 1 {
		s.log.Debug("auto match skipped", zap.String("found_item_id", item.FoundItemID), zap.Int("strong", len(strong)))
		return
	}
	c := strong[0]
	if _, err := s.matching.link(ctx, domain.SystemSession(), item.FoundItemID, c.Case.CaseNumber, c.Score); err != nil {
		s.log.Warn("auto match failed", zap.String("found_item_id", item.FoundItemID),
			zap.String("case_number", c.Case.CaseNumber), zap.Error(err))
	}
}

func (s *FoundItemService) ListFoundItems(ctx context.Context, actor domain.Session, f domain.FoundItemFilter) ([]domain.FoundItem, int64, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleStaff); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.Invalid("status", "unknown status "+string(f.Status))
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return s.store.FoundItems.List(ctx, f)
}

func (s *FoundItemService) GetFoundItem(ctx context.Context, actor domain.Session, id string) (*domain.FoundItem, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleStaff); err != nil {
		return nil, err
	}
	return s.store.FoundItems.Get(ctx, id)
}

// MatchWithCase 委托给匹配引擎
func (s *FoundItemService) MatchWithCase(ctx context.Context, actor domain.Session, foundItemID, caseNumber string) (*domain.Match, error) {
	return s.matching.Match(ctx, actor, foundItemID, caseNumber)
}

// MarkAsClaimed Matched → Claimed，关联案件同步 Claimed，关联确认
func (s *FoundItemService) MarkAsClaimed(ctx context.Context, actor domain.Session, id string) (*domain.FoundItem, error) {
	return s.resolve(ctx, actor, id, domain.FoundClaimed, domain.LostClaimed, domain.MatchConfirmed, nil, nil)
}

// MarkAsUnclaimed 无人认领：Found/Matched → Unclaimed，关联失效
func (s *FoundItemService) MarkAsUnclaimed(ctx context.Context, actor domain.Session, id string) (*domain.FoundItem, error) {
	return s.resolve(ctx, actor, id, domain.FoundUnclaimed, domain.LostUnclaimed, domain.MatchLapsed, nil, nil)
}

// Unmatch 驳回关联：两边回到匹配前的可匹配状态
func (s *FoundItemService) Unmatch(ctx context.Context, actor domain.Session, id string) (*domain.FoundItem, error) {
	return s.resolve(ctx, actor, id, domain.FoundFound, domain.LostReported, domain.MatchRejected,
		map[string]any{"matched_case_number": nil}, map[string]any{"matched_found_item_id": nil})
}

// resolve 招领物品迁移到 to，并在同一事务内把已关联案件迁移到 caseTo、关联置为 matchTo
func (s *FoundItemService) resolve(ctx context.Context, actor domain.Session, id string,
	to domain.FoundStatus, caseTo domain.LostStatus, matchTo domain.MatchStatus,
	foundFields, caseFields map[string]any) (*domain.FoundItem, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	now := s.now()
	var (
		fromF   domain.FoundStatus
		fromL   domain.LostStatus
		linked  string
		touched bool
	)
	err := s.store.Tx(ctx, func(tx *repo.Store) error {
		f, err := tx.FoundItems.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.FoundTransition(id, f.Status, to); err != nil {
			return err
		}
		fromF = f.Status
		ok, err := tx.FoundItems.Transition(ctx, id, f.Status, to, foundFields)
		if err != nil {
			return err
		}
		if !ok {
			return staleFound(ctx, tx, id, to)
		}
		if f.Status != domain.FoundMatched || f.MatchedCaseNumber == nil {
			return nil
		}

		linked = *f.MatchedCaseNumber
		l, err := tx.LostItems.GetForUpdate(ctx, linked)
		if err != nil {
			return err
		}
		if err := domain.LostTransition(linked, l.Status, caseTo); err != nil {
			return err
		}
		fromL = l.Status
		ok, err = tx.LostItems.Transition(ctx, linked, l.Status, caseTo, caseFields)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.StateError{
				Kind: domain.ErrInvalidTransition, Entity: "lost item", ID: linked,
				Status: string(l.Status), Detail: "changed concurrently",
			}
		}
		touched = true
		return tx.Matches.Resolve(ctx, id, matchTo, now)
	})
	if err != nil {
		return nil, err
	}
	countFound(fromF, to)
	if touched {
		countLost(fromL, caseTo)
	}
	s.invalidateStats(ctx)
	s.log.Info("found item status changed",
		zap.String("found_item_id", id), zap.String("from", string(fromF)), zap.String("to", string(to)),
		zap.String("case_number", linked), zap.String("by", actor.UserID))
	return s.store.FoundItems.Get(ctx, id)
}

// ArchiveFoundItem Claimed/Unclaimed → Archived，记录处置方式
func (s *FoundItemService) ArchiveFoundItem(ctx context.Context, actor domain.Session, id string, disposition domain.Disposition) (*domain.FoundItem, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !disposition.Valid() {
		return nil, domain.Invalid("disposition", "must be Donated, Disposed or Returned_to_Owner")
	}
	now := s.now()
	var from domain.FoundStatus
	err := s.store.Tx(ctx, func(tx *repo.Store) error {
		f, err := tx.FoundItems.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !f.Status.Archivable() {
			return &domain.StateError{
				Kind: domain.ErrNotEligible, Entity: "found item", ID: id,
				Status: string(f.Status), Detail: "only Claimed or Unclaimed items can be archived",
			}
		}
		from = f.Status
		ok, err := tx.FoundItems.Transition(ctx, id, f.Status, domain.FoundArchived,
			map[string]any{"disposition": disposition, "archived_at": now})
		if err != nil {
			return err
		}
		if !ok {
			return staleFound(ctx, tx, id, domain.FoundArchived)
		}
		return tx.Archives.Create(ctx, &domain.Archive{
			ID: utils.NewID(), SubjectType: domain.ArchiveFoundItem, SubjectID: id,
			Disposition: disposition, ArchivedBy: actor.UserID, Date: now,
		})
	})
	if err != nil {
		return nil, err
	}
	countFound(from, domain.FoundArchived)
	s.invalidateStats(ctx)
	s.log.Info("found item archived", zap.String("found_item_id", id),
		zap.String("disposition", string(disposition)), zap.String("by", actor.UserID))
	return s.store.FoundItems.Get(ctx, id)
}

func staleFound(ctx context.Context, tx *repo.Store, id string, to domain.FoundStatus) error {
	cur, err := tx.FoundItems.Get(ctx, id)
	if err != nil {
		return err
	}
	return &domain.StateError{
		Kind: domain.ErrInvalidTransition, Entity: "found item", ID: id,
		Status: string(cur.Status), Detail: "cannot move to " + string(to),
	}
}
