package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"culfs/internal/domain"
	"culfs/internal/repo"
	"culfs/pkg/utils"
)

type LostItemService struct {
	*base
	archiveAfter time.Duration
}

type ReportLostItemInput struct {
	UserID           string // 仅管理员可代报
	ItemName         string
	ItemType         string
	ItemColor        string
	Brand            string
	Description      string
	LastSeenDate     string // YYYY-MM-DD
	LastSeenLocation string
}

func (s *LostItemService) ReportLostItem(ctx context.Context, actor domain.Session, in ReportLostItemInput) (*domain.LostItem, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	owner := actor.UserID
	if in.UserID != "" && in.UserID != owner {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("report for another user: %w", domain.ErrForbidden)
		}
		owner = in.UserID
	}
	if err := required(
		[2]string{"itemName", in.ItemName},
		[2]string{"itemType", in.ItemType},
		[2]string{"description", in.Description},
		[2]string{"lastSeenDate", in.LastSeenDate},
		[2]string{"lastSeenLocation", in.LastSeenLocation},
	); err != nil {
		return nil, err
	}
	now := s.now()
	seen, err := parseDate("lastSeenDate", in.LastSeenDate, now)
	if err != nil {
		return nil, err
	}
	u, err := s.store.Users.FindByID(ctx, owner)
	if err != nil {
		return nil, err
	}

	item := &domain.LostItem{
		UserID:           owner,
		ItemName:         strings.TrimSpace(in.ItemName),
		ItemType:         strings.TrimSpace(in.ItemType),
		ItemColor:        strings.TrimSpace(in.ItemColor),
		Brand:            strings.TrimSpace(in.Brand),
		Description:      strings.TrimSpace(in.Description),
		LastSeenDate:     datatypes.Date(seen),
		LastSeenLocation: strings.TrimSpace(in.LastSeenLocation),
		Status:           domain.LostReported,
		ReporterName:     u.Name,
		ReporterEmail:    u.Email,
		DateReported:     now,
	}
	_, err = s.createWithID(ctx, "CU", func(id string) error {
		item.CaseNumber = id
		return s.store.LostItems.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	s.log.Info("lost item reported", zap.String("case_number", item.CaseNumber), zap.String("user_id", owner))
	return item, nil
}

func (s *LostItemService) ListLostItemsForUser(ctx context.Context, actor domain.Session, userID string) ([]domain.LostItem, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	items, _, err := s.store.LostItems.List(ctx, domain.LostItemFilter{UserID: userID})
	return items, err
}

func (s *LostItemService) ListAllLostItems(ctx context.Context, actor domain.Session, f domain.LostItemFilter) ([]domain.LostItem, int64, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.Invalid("status", "unknown status "+string(f.Status))
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return s.store.LostItems.List(ctx, f)
}

func (s *LostItemService) GetLostItem(ctx context.Context, actor domain.Session, caseNumber string) (*domain.LostItem, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	item, err := s.store.LostItems.Get(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	// 员工需要查看案件才能核对招领物品
	if !actor.HasRole(domain.RoleStaff) {
		if err := requireOwner(actor, item.UserID); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// MarkAsFound Reported → Found
func (s *LostItemService) MarkAsFound(ctx context.Context, actor domain.Session, caseNumber string) (*domain.LostItem, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleStaff); err != nil {
		return nil, err
	}
	item, err := s.store.LostItems.Get(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	if err := domain.LostTransition(caseNumber, item.Status, domain.LostFound); err != nil {
		return nil, err
	}
	ok, err := s.store.LostItems.Transition(ctx, caseNumber, item.Status, domain.LostFound, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.staleLost(ctx, caseNumber, domain.LostFound)
	}
	countLost(item.Status, domain.LostFound)
	s.invalidateStats(ctx)
	s.log.Info("lost item marked found", zap.String("case_number", caseNumber), zap.String("by", actor.UserID))
	return s.store.LostItems.Get(ctx, caseNumber)
}

// DeleteLostItem 仅 Reported / Unclaimed 可删除（软删）
func (s *LostItemService) DeleteLostItem(ctx context.Context, actor domain.Session, caseNumber string) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	item, err := s.store.LostItems.Get(ctx, caseNumber)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, item.UserID); err != nil {
		return err
	}
	if !item.Status.Deletable() {
		return notDeletable(item)
	}
	ok, err := s.store.LostItems.SoftDelete(ctx, caseNumber, domain.LostReported, domain.LostUnclaimed)
	if err != nil {
		return err
	}
	if !ok {
		cur, err := s.store.LostItems.Get(ctx, caseNumber)
		if err != nil {
			return err
		}
		return notDeletable(cur)
	}
	s.invalidateStats(ctx)
	s.log.Info("lost item deleted", zap.String("case_number", caseNumber), zap.String("by", actor.UserID))
	return nil
}

func notDeletable(item *domain.LostItem) error {
	return &domain.StateError{
		Kind: domain.ErrForbiddenTransition, Entity: "lost item", ID: item.CaseNumber,
		Status: string(item.Status), Detail: "only Reported or Unclaimed cases can be deleted",
	}
}

// ArchiveLostItem 未终结且报案超过 archiveAfter 的案件可归档
func (s *LostItemService) ArchiveLostItem(ctx context.Context, actor domain.Session, caseNumber string) (*domain.LostItem, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.archive(ctx, actor, caseNumber); err != nil {
		return nil, err
	}
	return s.store.LostItems.Get(ctx, caseNumber)
}

// Eligible 归档条件：非终态且 now - dateReported 严格大于 archiveAfter
func (s *LostItemService) Eligible(item *domain.LostItem, now time.Time) error {
	if item.Status.Terminal() {
		return &domain.StateError{
			Kind: domain.ErrNotEligible, Entity: "lost item", ID: item.CaseNumber,
			Status: string(item.Status), Detail: "case is closed",
		}
	}
	if age := item.AgeAt(now); age <= s.archiveAfter {
		return &domain.StateError{
			Kind: domain.ErrNotEligible, Entity: "lost item", ID: item.CaseNumber,
			Status: string(item.Status),
			Detail: fmt.Sprintf("reported %d days ago, must be older than %d days",
				int(age/(24*time.Hour)), int(s.archiveAfter/(24*time.Hour))),
		}
	}
	return nil
}

// archive 在事务内锁定案件后重新判断条件；关联的招领物品以锁定时的行为准
func (s *LostItemService) archive(ctx context.Context, actor domain.Session, caseNumber string) error {
	now := s.now()
	var from domain.LostStatus
	err := s.store.Tx(ctx, func(tx *repo.Store) error {
		item, err := tx.LostItems.GetForUpdate(ctx, caseNumber)
		if err != nil {
			return err
		}
		if err := s.Eligible(item, now); err != nil {
			return err
		}
		from = item.Status
		fields := map[string]any{"archived_at": now}
		if item.MatchedFoundItemID != nil {
			fields["matched_found_item_id"] = nil
		}
		ok, err := tx.LostItems.Transition(ctx, caseNumber, from, domain.LostArchived, fields)
		if err != nil {
			return err
		}
		if !ok {
			return s.staleLostTx(ctx, tx, caseNumber, domain.LostArchived)
		}
		// 已匹配的招领物品退回 Found，关联失效；未命中则整体回滚
		if from == domain.LostMatched && item.MatchedFoundItemID != nil {
			fid := *item.MatchedFoundItemID
			ok, err := tx.FoundItems.Transition(ctx, fid, domain.FoundMatched, domain.FoundFound,
				map[string]any{"matched_case_number": nil})
			if err != nil {
				return err
			}
			if !ok {
				return staleFound(ctx, tx, fid, domain.FoundFound)
			}
			if err := tx.Matches.Resolve(ctx, fid, domain.MatchLapsed, now); err != nil {
				return err
			}
		}
		return tx.Archives.Create(ctx, &domain.Archive{
			ID: utils.NewID(), SubjectType: domain.ArchiveLostItem, SubjectID: caseNumber,
			ArchivedBy: actor.UserID, Date: now,
		})
	})
	if err != nil {
		return err
	}
	countLost(from, domain.LostArchived)
	s.invalidateStats(ctx)
	s.log.Info("lost item archived", zap.String("case_number", caseNumber),
		zap.String("from", string(from)), zap.String("by", actor.UserID))
	return nil
}

// SweepArchive 归档全部符合条件的案件，返回已归档的案件号
func (s *LostItemService) SweepArchive(ctx context.Context) ([]string, error) {
	items, err := s.store.LostItems.ListArchivable(ctx, s.now().Add(-s.archiveAfter))
	if err != nil {
		return nil, err
	}
	done := make([]string, 0, len(items))
	for i := range items {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := s.archive(ctx, domain.SystemSession(), items[i].CaseNumber); err != nil {
			s.log.Warn("sweep archive skipped", zap.String("case_number", items[i].CaseNumber), zap.Error(err))
			continue
		}
		done = append(done, items[i].CaseNumber)
	}
	return done, nil
}

// NotifyReporter 给案件所有者追加通知，不改变状态
func (s *LostItemService) NotifyReporter(ctx context.Context, actor domain.Session, caseNumber, message string, typ domain.NotificationType) (*domain.Notification, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleStaff); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.Invalid("message", "is required")
	}
	if typ == "" {
		typ = domain.NotifAdminContact
	}
	if typ != domain.NotifAdminContact && typ != domain.NotifClaimReminder {
		return nil, domain.Invalid("type", "must be Admin_Contact or Claim_Reminder")
	}
	item, err := s.store.LostItems.Get(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	n, err := appendNotification(ctx, s.store, s.now(), item.UserID, caseNumber, typ, message,
		map[string]any{"sentBy": actor.UserID, "status": string(item.Status)})
	if err != nil {
		return nil, err
	}
	s.log.Info("reporter notified", zap.String("case_number", caseNumber), zap.String("type", string(typ)))
	return n, nil
}

// staleLost 条件更新未命中：状态已被并发修改
func (s *LostItemService) staleLost(ctx context.Context, caseNumber string, to domain.LostStatus) error {
	return s.staleLostTx(ctx, s.store, caseNumber, to)
}

func (s *LostItemService) staleLostTx(ctx context.Context, st *repo.Store, caseNumber string, to domain.LostStatus) error {
	cur, err := st.LostItems.Get(ctx, caseNumber)
	if err != nil {
		return err
	}
	return &domain.StateError{
		Kind: domain.ErrInvalidTransition, Entity: "lost item", ID: caseNumber,
		Status: string(cur.Status), Detail: "cannot move to " + string(to),
	}
}
