package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"culfs/internal/domain"
	"culfs/internal/service"
	"culfs/internal/transport/http/ez"
)

// AdminHandler 看板统计与办公室维护
type AdminHandler struct {
	Stats *service.StatsService
	DB    *gorm.DB
}

type statsOut struct {
	Stats *service.Summary `json:"stats"`
}

func (h *AdminHandler) MountAdmin(admin ez.EZ) {
	ez.RegisterAction(admin, ez.Action[struct{}, statsOut]{
		Method: http.MethodGet, Path: "/stats", Roles: adminOnly,
		Handler: func(c *gin.Context, s domain.Session, _ *struct{}) (statsOut, error) {
			sum, err := h.Stats.Summary(c.Request.Context(), s)
			if err != nil {
				return statsOut{}, err
			}
			return statsOut{Stats: sum}, nil
		},
	})

	// 办公室：列表/详情任意登录用户可读（登记表单下拉），写操作仅管理员
	ez.Crud(admin, ez.CrudConfig[domain.Office]{
		DB: h.DB, Path: "/offices", Entity: "office",
		New:        func() *domain.Office { return &domain.Office{} },
		IDField:    "OfficeID",
		WriteRoles: adminOnly,
		OrderBy:    "office_id ASC",
		Hooks: ez.CrudHooks[domain.Office]{
			BeforeCreate: func(_ *gin.Context, o *domain.Office) error {
				o.OfficeID = strings.ToUpper(strings.TrimSpace(o.OfficeID))
				switch {
				case o.OfficeID == "":
					return domain.Invalid("officeId", "is required")
				case len(o.OfficeID) > 10:
					return domain.Invalid("officeId", "must be at most 10 characters")
				case strings.TrimSpace(o.OfficeName) == "":
					return domain.Invalid("officeName", "is required")
				case strings.TrimSpace(o.ContactEmail) == "":
					return domain.Invalid("contactEmail", "is required")
				case strings.TrimSpace(o.ResponsiblePerson) == "":
					return domain.Invalid("responsiblePerson", "is required")
				}
				return checkOffice(o)
			},
			BeforeUpdate: func(_ *gin.Context, o *domain.Office) error {
				return checkOffice(o)
			},
			// ?q= 按编号或名称模糊匹配
			ScopeList: func(c *gin.Context, q *gorm.DB) *gorm.DB {
				if s := strings.TrimSpace(c.Query("q")); s != "" {
					like := "%" + strings.ToLower(s) + "%"
					q = q.Where("LOWER(office_id) LIKE ? OR LOWER(office_name) LIKE ?", like, like)
				}
				return q
			},
		},
	})
}

// checkOffice 整理并校验已给出的字段；更新时未给出的字段为空，跳过
func checkOffice(o *domain.Office) error {
	o.OfficeName = strings.TrimSpace(o.OfficeName)
	o.ContactEmail = strings.TrimSpace(o.ContactEmail)
	o.ResponsiblePerson = strings.TrimSpace(o.ResponsiblePerson)
	if o.ContactEmail != "" && !strings.Contains(o.ContactEmail, "@") {
		return domain.Invalid("contactEmail", "must be an email address")
	}
	return nil
}
