package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"culfs/internal/domain"
	"culfs/internal/service"
	"culfs/internal/transport/http/ez"
)

type FoundItemHandler struct {
	FoundItems *service.FoundItemService
	Matching   *service.MatchingService
}

type logFoundIn struct {
	OfficeID      string `json:"officeId"`
	ItemName      string `json:"itemName"`
	ItemColor     string `json:"itemColor"`
	Description   string `json:"description"`
	FoundDate     string `json:"foundDate"`
	FoundLocation string `json:"foundLocation"`
}

type logFoundOut struct {
	FoundItemID string        `json:"found_item_id"`
	Item        FoundItemView `json:"item"`
}

type foundItemOut struct {
	Item FoundItemView `json:"item"`
}

type foundItemsOut struct {
	Items []FoundItemView `json:"items"`
	Total int64           `json:"total"`
}

type matchIn struct {
	CaseNumber string `json:"caseNumber"`
}

type archiveIn struct {
	Disposition string `json:"disposition"`
}

type candidatesQuery struct {
	Limit int `form:"limit"`
}

type candidatesOut struct {
	Candidates []CandidateView `json:"candidates"`
}

var adminOnly = []domain.Role{domain.RoleAdmin}

func (h *FoundItemHandler) MountAPI(_, authed ez.EZ) {
	ez.RegisterAction(authed, ez.Action[logFoundIn, logFoundOut]{
		Method: http.MethodPost, Path: "/log-found-item", Binder: ez.BindJSON, Roles: staffOrAdmin,
		Message: "Found item logged successfully",
		Handler: func(c *gin.Context, s domain.Session, in *logFoundIn) (logFoundOut, error) {
			item, err := h.FoundItems.LogFoundItem(c.Request.Context(), s, service.LogFoundItemInput{
				OfficeID: in.OfficeID, ItemName: in.ItemName, ItemColor: in.ItemColor,
				Description: in.Description, FoundDate: in.FoundDate, FoundLocation: in.FoundLocation,
			})
			if err != nil {
				return logFoundOut{}, err
			}
			return logFoundOut{FoundItemID: item.FoundItemID, Item: foundItemView(item)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, foundItemOut]{
		Method: http.MethodGet, Path: "/found-items/:id", Roles: staffOrAdmin,
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (foundItemOut, error) {
			item, err := h.FoundItems.GetFoundItem(c.Request.Context(), s, c.Param("id"))
			if err != nil {
				return foundItemOut{}, err
			}
			return foundItemOut{Item: foundItemView(item)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[candidatesQuery, candidatesOut]{
		Method: http.MethodGet, Path: "/found-items/:id/candidates", Binder: ez.BindQuery, Roles: staffOrAdmin,
		Handler: func(c *gin.Context, s domain.Session, q *candidatesQuery) (candidatesOut, error) {
			cs, err := h.Matching.Candidates(c.Request.Context(), s, c.Param("id"), q.Limit)
			if err != nil {
				return candidatesOut{}, err
			}
			return candidatesOut{Candidates: candidateViews(cs)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, matchOut]{
		Method: http.MethodGet, Path: "/found-items/:id/match", Roles: staffOrAdmin,
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (matchOut, error) {
			m, err := h.Matching.MatchForFoundItem(c.Request.Context(), s, c.Param("id"))
			if err != nil {
				return matchOut{}, err
			}
			return matchOut{Match: matchView(m)}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[matchIn, matchOut]{
		Method: http.MethodPost, Path: "/found-items/:id/match", Binder: ez.BindJSON, Roles: adminOnly,
		Message: "Item matched successfully",
		Handler: func(c *gin.Context, s domain.Session, in *matchIn) (matchOut, error) {
			m, err := h.FoundItems.MatchWithCase(c.Request.Context(), s, c.Param("id"), in.CaseNumber)
			if err != nil {
				return matchOut{}, err
			}
			return matchOut{Match: matchView(m)}, nil
		},
	})

	type transition struct {
		path, msg string
		op        func(*gin.Context, domain.Session, string) (*domain.FoundItem, error)
	}
	for _, t := range []transition{
		{"/found-items/:id/unmatch", "Match rejected", func(c *gin.Context, s domain.Session, id string) (*domain.FoundItem, error) {
			return h.FoundItems.Unmatch(c.Request.Context(), s, id)
		}},
		{"/found-items/:id/mark-claimed", "Item marked as claimed", func(c *gin.Context, s domain.Session, id string) (*domain.FoundItem, error) {
			return h.FoundItems.MarkAsClaimed(c.Request.Context(), s, id)
		}},
		{"/found-items/:id/mark-unclaimed", "Item marked as unclaimed", func(c *gin.Context, s domain.Session, id string) (*domain.FoundItem, error) {
			return h.FoundItems.MarkAsUnclaimed(c.Request.Context(), s, id)
		}},
	} {
		op := t.op
		ez.RegisterAction(authed, ez.Action[struct{}, foundItemOut]{
			Method: http.MethodPost, Path: t.path, Roles: adminOnly, Message: t.msg,
			Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (foundItemOut, error) {
				item, err := op(c, s, c.Param("id"))
				if err != nil {
					return foundItemOut{}, err
				}
				return foundItemOut{Item: foundItemView(item)}, nil
			},
		})
	}

	ez.RegisterAction(authed, ez.Action[archiveIn, foundItemOut]{
		Method: http.MethodPost, Path: "/found-items/:id/archive", Binder: ez.BindJSON, Roles: adminOnly,
		Message: "Item archived",
		Handler: func(c *gin.Context, s domain.Session, in *archiveIn) (foundItemOut, error) {
			item, err := h.FoundItems.ArchiveFoundItem(c.Request.Context(), s, c.Param("id"), domain.Disposition(in.Disposition))
			if err != nil {
				return foundItemOut{}, err
			}
			return foundItemOut{Item: foundItemView(item)}, nil
		},
	})
}

func (h *FoundItemHandler) MountAdmin(admin ez.EZ) {
	ez.RegisterAction(admin, ez.Action[listQuery, foundItemsOut]{
		Method: http.MethodGet, Path: "/found-items", Binder: ez.BindQuery, Roles: staffOrAdmin,
		Handler: func(c *gin.Context, s domain.Session, q *listQuery) (foundItemsOut, error) {
			off, lim := q.window()
			items, total, err := h.FoundItems.ListFoundItems(c.Request.Context(), s, domain.FoundItemFilter{
				Status: domain.FoundStatus(q.Status), Offset: off, Limit: lim,
			})
			if err != nil {
				return foundItemsOut{}, err
			}
			return foundItemsOut{Items: foundItemViews(items), Total: total}, nil
		},
	})
}
