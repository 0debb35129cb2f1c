package router

import (
	"fmt"

	"culfs/internal/transport/http/ez"
)

// APIModule 模块可选择实现其中一个或两个接口
type APIModule interface{ MountAPI(public, authed ez.EZ) }
type AdminModule interface{ MountAdmin(admin ez.EZ) }

// Registry 收集模块，构建引擎时按注册顺序一次性挂载
type Registry struct {
	apiMods   []APIModule
	adminMods []AdminModule
}

// Register 根据类型断言分发到 API/Admin 列表；两者都不是返回 false
func (r *Registry) Register(mods ...any) bool {
	ok := true
	for _, mod := range mods {
		matched := false
		if m, is := mod.(APIModule); is {
			r.apiMods = append(r.apiMods, m)
			matched = true
		}
		if m, is := mod.(AdminModule); is {
			r.adminMods = append(r.adminMods, m)
			matched = true
		}
		ok = ok && matched
	}
	return ok
}

// MustRegister 同 Register，遇到无法挂载的模块直接 panic
func (r *Registry) MustRegister(mods ...any) {
	for _, mod := range mods {
		if !r.Register(mod) {
			panic(fmt.Sprintf("router: %T implements neither APIModule nor AdminModule", mod))
		}
	}
}

// MountAPI 在 /api 上挂载所有 API 模块
func (r *Registry) MountAPI(public, authed ez.EZ) {
	for _, m := range r.apiMods {
		m.MountAPI(public, authed)
	}
}

// MountAdmin 在 /api/admin 上挂载所有 Admin 模块
func (r *Registry) MountAdmin(admin ez.EZ) {
	for _, m := range r.adminMods {
		m.MountAdmin(admin)
	}
}
