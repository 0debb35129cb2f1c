package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"culfs/internal/domain"
	"culfs/internal/service"
	"culfs/internal/transport/http/ez"
)

type LostItemHandler struct {
	LostItems *service.LostItemService
	Matching  *service.MatchingService
}

type reportIn struct {
	UserID           string `json:"userId"`
	ItemName         string `json:"itemName"`
	ItemType         string `json:"itemType"`
	ItemColor        string `json:"itemColor"`
	Brand            string `json:"brand"`
	Description      string `json:"description"`
	LastSeenDate     string `json:"lastSeenDate"`
	LastSeenLocation string `json:"lastSeenLocation"`
}

type reportOut struct {
	CaseNumber string       `json:"case_number"`
	Item       LostItemView `json:"item"`
}

type lostItemOut struct {
	Item LostItemView `json:"item"`
}

type lostItemsOut struct {
	Items []LostItemView `json:"items"`
	Total int64          `json:"total"`
}

type matchOut struct {
	Match *MatchView `json:"match"`
}

type notifyIn struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type notificationOut struct {
	Notification NotificationView `json:"notification"`
}

var staffOrAdmin = []domain.Role{domain.RoleStaff, domain.RoleAdmin}

func (h *LostItemHandler) MountAPI(_, authed ez.EZ) {
	ez.RegisterAction(authed, ez.Action[reportIn, reportOut]{
		Method: http.MethodPost, Path: "/report-lost-item", Binder: ez.BindJSON, Auth: true,
		Message: "Item reported successfully",
		Handler: func(c *gin.Context, s domain.Session, in *reportIn) (reportOut, error) {
			item, err := h.LostItems.ReportLostItem(c.Request.Context(), s, service.ReportLostItemInput{
				UserID: in.UserID, ItemName: in.ItemName, ItemType: in.ItemType, ItemColor: in.ItemColor,
				Brand: in.Brand, Description: in.Description,
				LastSeenDate: in.LastSeenDate, LastSeenLocation: in.LastSeenLocation,
			})
			if err != nil {
				return reportOut{}, err
			}
			return reportOut{CaseNumber: item.CaseNumber, Item: lostItemView(item)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, lostItemsOut]{
		Method: http.MethodGet, Path: "/lost-items/:userId", Auth: true,
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (lostItemsOut, error) {
			items, err := h.LostItems.ListLostItemsForUser(c.Request.Context(), s, c.Param("userId"))
			if err != nil {
				return lostItemsOut{}, err
			}
			return lostItemsOut{Items: lostItemViews(items), Total: int64(len(items))}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, lostItemOut]{
		Method: http.MethodGet, Path: "/lost-items/case/:caseNumber", Auth: true,
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (lostItemOut, error) {
			item, err := h.LostItems.GetLostItem(c.Request.Context(), s, c.Param("caseNumber"))
			if err != nil {
				return lostItemOut{}, err
			}
			return lostItemOut{Item: lostItemView(item)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, matchOut]{
		Method: http.MethodGet, Path: "/lost-items/case/:caseNumber/match", Auth: true,
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (matchOut, error) {
			m, err := h.Matching.MatchForCase(c.Request.Context(), s, c.Param("caseNumber"))
			if err != nil {
				return matchOut{}, err
			}
			return matchOut{Match: matchView(m)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, lostItemOut]{
		Method: http.MethodPost, Path: "/lost-items/:caseNumber/mark-found", Roles: staffOrAdmin,
		Message: "Item marked as found",
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (lostItemOut, error) {
			item, err := h.LostItems.MarkAsFound(c.Request.Context(), s, c.Param("caseNumber"))
			if err != nil {
				return lostItemOut{}, err
			}
			return lostItemOut{Item: lostItemView(item)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, lostItemOut]{
		Method: http.MethodPost, Path: "/lost-items/:caseNumber/archive", Roles: []domain.Role{domain.RoleAdmin},
		Message: "Item archived",
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (lostItemOut, error) {
			item, err := h.LostItems.ArchiveLostItem(c.Request.Context(), s, c.Param("caseNumber"))
			if err != nil {
				return lostItemOut{}, err
			}
			return lostItemOut{Item: lostItemView(item)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[notifyIn, notificationOut]{
		Method: http.MethodPost, Path: "/lost-items/:caseNumber/notify", Binder: ez.BindJSON, Roles: staffOrAdmin,
		Message: "Notification sent",
		Handler: func(c *gin.Context, s domain.Session, in *notifyIn) (notificationOut, error) {
			n, err := h.LostItems.NotifyReporter(c.Request.Context(), s, c.Param("caseNumber"), in.Message, domain.NotificationType(in.Type))
			if err != nil {
				return notificationOut{}, err
			}
			return notificationOut{Notification: notificationView(n)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete, Path: "/lost-items/:caseNumber", Auth: true,
		Message: "Item deleted",
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (struct{}, error) {
			return struct{}{}, h.LostItems.DeleteLostItem(c.Request.Context(), s, c.Param("caseNumber"))
		},
	})
}

type listQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Size   int    `form:"size"`
}

func (q listQuery) window() (offset, limit int) {
	limit = q.Size
	if limit <= 0 {
		limit = 50
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}

func (h *LostItemHandler) MountAdmin(admin ez.EZ) {
	ez.RegisterAction(admin, ez.Action[listQuery, lostItemsOut]{
		Method: http.MethodGet, Path: "/lost-items", Binder: ez.BindQuery, Roles: []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, s domain.Session, q *listQuery) (lostItemsOut, error) {
			off, lim := q.window()
			items, total, err := h.LostItems.ListAllLostItems(c.Request.Context(), s, domain.LostItemFilter{
				Status: domain.LostStatus(q.Status), Offset: off, Limit: lim,
			})
			if err != nil {
				return lostItemsOut{}, err
			}
			return lostItemsOut{Items: lostItemViews(items), Total: total}, nil
		},
	})
}
