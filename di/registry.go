package di

import (
	"reflect"
	"sync"
)

// TypeRegistry 类型名称注册表
// 文件配置里的 concrete/type 字段是字符串，经由它映射到 Go 类型；
// 未注册的名称在配置装载期报错而不是运行期才发现
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewTypeRegistry 创建空注册表
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]reflect.Type)}
}

// Register 以 name 注册类型
func (r *TypeRegistry) Register(name string, typ reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = typ
}

// Lookup 按名称查找类型
func (r *TypeRegistry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typ, ok := r.types[name]
	return typ, ok
}

// RegisterType 注册类型 T，名称缺省为类型字符串（如 "*web.UserController"）
func RegisterType[T any](r *TypeRegistry, name ...string) {
	typ := TypeOf[T]()
	key := typ.String()
	if len(name) > 0 && name[0] != "" {
		key = name[0]
	}
	r.Register(key, typ)
}
