package ez

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"culfs/internal/domain"
	"culfs/internal/repo"
	"culfs/internal/transport/http/middleware"
	resp "culfs/internal/transport/http/response"
)

// Hook
type CrudHooks[T any] struct {
	BeforeCreate func(c *gin.Context, m *T) error
	BeforeUpdate func(c *gin.Context, m *T) error          // m 只含请求里给出的字段，ID 已按路径固定
	ScopeList    func(c *gin.Context, q *gorm.DB) *gorm.DB // 自定义筛选
	AfterWrite   func(c *gin.Context)                      // 写成功后（清缓存等）
}

type CrudConfig[T any] struct {
	DB     *gorm.DB
	Path   string
	Entity string // 错误信息里的实体名
	New    func() *T

	Hooks CrudHooks[T]

	AllowCreate bool
	AllowList   bool
	AllowGet    bool
	AllowUpdate bool
	AllowDelete bool

	ReadRoles  []domain.Role // 为空表示任意已登录用户
	WriteRoles []domain.Role

	IDField string // 默认 "ID"

	// 列表排序（列名按模型字段自动转 snake_case），为空则按 ID DESC
	OrderBy string // 例如 "office_name ASC"
}

// 反射 & 工具
func (c *CrudConfig[T]) idFieldCandidates() []string {
	if c.IDField != "" {
		return []string{c.IDField, "ID", "Id"}
	}
	return []string{"ID", "Id"}
}

func getStringFieldPtr(obj any, candidates []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return nil, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	// 按候选顺序优先匹配
	for _, cand := range candidates {
		f, ok := t.FieldByName(cand)
		if !ok || f.PkgPath != "" || len(f.Index) != 1 {
			continue
		}
		fv := v.Field(f.Index[0])
		if fv.Kind() == reflect.String && fv.CanSet() {
			return fv.Addr().Interface().(*string), true
		}
	}
	return nil, false
}

func readStringField(obj any, candidates []string) (string, bool) {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return "", false
	}
	return *p, true
}

func writeStringField(obj any, candidates []string, val string) bool {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return false
	}
	*p = val
	return true
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func toSnake(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			// "OfficeID" -> office_id，连续大写视为一个词
			if i > 0 && (unicode.IsLower(rs[i-1]) || (i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Crud 反射式 CRUD 注册（无需模型实现任何接口）
func Crud[T any](e EZ, cfg CrudConfig[T]) {
	if !cfg.AllowCreate && !cfg.AllowGet && !cfg.AllowList && !cfg.AllowUpdate && !cfg.AllowDelete {
		cfg.AllowCreate, cfg.AllowList, cfg.AllowGet, cfg.AllowUpdate, cfg.AllowDelete = true, true, true, true, true
	}
	if cfg.Entity == "" {
		cfg.Entity = strings.TrimPrefix(cfg.Path, "/")
	}

	idFieldNames := cfg.idFieldCandidates()

	// 鉴权；失败时已写响应
	guard := func(c *gin.Context, roles []domain.Role) bool {
		s := middleware.SessionFrom(c)
		if s.UserID == "" {
			middleware.Respond(c, resp.Fail(resp.CodeUnauthorized, resp.ReasonAuth, "unauthorized"))
			return false
		}
		if len(roles) > 0 && !s.HasRole(roles...) {
			middleware.Respond(c, resp.Fail(resp.CodeForbidden, resp.ReasonForbidden, "forbidden"))
			return false
		}
		return true
	}
	// byID 以主键为条件的结构体
	byID := func(id string) *T {
		m := cfg.New()
		_ = writeStringField(m, idFieldNames, id)
		return m
	}
	afterWrite := func(c *gin.Context) {
		if cfg.Hooks.AfterWrite != nil {
			cfg.Hooks.AfterWrite(c)
		}
	}

	// Create
	if cfg.AllowCreate {
		e.g.POST(cfg.Path, func(c *gin.Context) {
			if !guard(c, cfg.WriteRoles) {
				return
			}
			m := cfg.New()
			if err := c.ShouldBindJSON(m); err != nil {
				e.Fail(c, BadRequest(bindMessage(err)))
				return
			}
			id, ok := readStringField(m, idFieldNames)
			if !ok {
				e.Fail(c, BadRequest("id field not found"))
				return
			}
			if cfg.Hooks.BeforeCreate != nil {
				if err := cfg.Hooks.BeforeCreate(c, m); err != nil {
					e.Fail(c, err)
					return
				}
				id, _ = readStringField(m, idFieldNames)
			}
			if err := cfg.DB.WithContext(c.Request.Context()).Create(m).Error; err != nil {
				e.Fail(c, repo.Translate(err, cfg.Entity, id))
				return
			}
			afterWrite(c)
			middleware.Respond(c, resp.OK(gin.H{"item": m}))
		})
	}

	// List
	if cfg.AllowList {
		e.g.GET(cfg.Path, func(c *gin.Context) {
			if !guard(c, cfg.ReadRoles) {
				return
			}
			page := atoiDefault(c.Query("page"), 1)
			size := atoiDefault(c.Query("size"), 50)
			if size > 200 {
				size = 200
			}
			q := cfg.DB.WithContext(c.Request.Context()).Model(cfg.New())
			if cfg.Hooks.ScopeList != nil {
				q = cfg.Hooks.ScopeList(c, q)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				e.Fail(c, err)
				return
			}
			// 动态排序：优先按配置 OrderBy，否则按 ID DESC
			if cfg.OrderBy != "" {
				q = q.Order(cfg.OrderBy)
			} else {
				q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: toSnake(idFieldNames[0])}, Desc: true})
			}
			items := make([]T, 0, size)
			if err := q.Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
				e.Fail(c, err)
				return
			}
			middleware.Respond(c, resp.OK(gin.H{
				"items": items, "total": total, "page": page, "size": size,
			}))
		})
	}

	// Get
	if cfg.AllowGet {
		e.g.GET(cfg.Path+"/:id", func(c *gin.Context) {
			if !guard(c, cfg.ReadRoles) {
				return
			}
			id := c.Param("id")
			m := cfg.New()
			if err := cfg.DB.WithContext(c.Request.Context()).Where(byID(id)).First(m).Error; err != nil {
				e.Fail(c, repo.Translate(err, cfg.Entity, id))
				return
			}
			middleware.Respond(c, resp.OK(gin.H{"item": m}))
		})
	}

	// Update
	if cfg.AllowUpdate {
		e.g.PUT(cfg.Path+"/:id", func(c *gin.Context) {
			if !guard(c, cfg.WriteRoles) {
				return
			}
			id := c.Param("id")
			db := cfg.DB.WithContext(c.Request.Context())

			// 先确认存在
			check := byID(id)
			if err := db.Where(check).First(cfg.New()).Error; err != nil {
				e.Fail(c, repo.Translate(err, cfg.Entity, id))
				return
			}
			in := cfg.New()
			if err := c.ShouldBindJSON(in); err != nil {
				e.Fail(c, BadRequest(bindMessage(err)))
				return
			}
			// 主键以路径为准
			_ = writeStringField(in, idFieldNames, id)
			if cfg.Hooks.BeforeUpdate != nil {
				if err := cfg.Hooks.BeforeUpdate(c, in); err != nil {
					e.Fail(c, err)
					return
				}
			}
			if err := db.Model(cfg.New()).Where(check).Updates(in).Error; err != nil {
				e.Fail(c, repo.Translate(err, cfg.Entity, id))
				return
			}
			afterWrite(c)
			middleware.Respond(c, resp.OK(gin.H{"id": id}))
		})
	}

	// Delete
	if cfg.AllowDelete {
		e.g.DELETE(cfg.Path+"/:id", func(c *gin.Context) {
			if !guard(c, cfg.WriteRoles) {
				return
			}
			id := c.Param("id")
			res := cfg.DB.WithContext(c.Request.Context()).Where(byID(id)).Delete(cfg.New())
			if res.Error != nil {
				e.Fail(c, res.Error)
				return
			}
			if res.RowsAffected == 0 {
				e.Fail(c, domain.NotFound(cfg.Entity, id))
				return
			}
			afterWrite(c)
			middleware.Respond(c, resp.OK(gin.H{"id": id}))
		})
	}
}
