package di

import (
	"reflect"
	"sync"
)

// Repository 定义仓库，按具体类型与逻辑名称双键索引
// 同一键重复插入时后者覆盖前者；没有逻辑名称的定义只能按类型查到。
// 发现得到的定义也插入此仓库，后续查找不再重复内省
type Repository struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Definition
	byName map[string]*Definition
}

// NewRepository 创建空仓库
func NewRepository() *Repository {
	return &Repository{
		byType: make(map[reflect.Type]*Definition),
		byName: make(map[string]*Definition),
	}
}

// Insert 存入定义，按 ConcreteType 索引；有逻辑名称时额外按名称索引
func (r *Repository) Insert(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byType[def.ConcreteType] = def
	if def.Name != "" {
		r.byName[def.Name] = def
	}
}

// HasType 是否存在 typ 的定义
func (r *Repository) HasType(typ reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byType[typ]
	return ok
}

// GetByType 按具体类型查找
func (r *Repository) GetByType(typ reflect.Type) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byType[typ]
	return def, ok
}

// HasName 是否存在名为 name 的定义
func (r *Repository) HasName(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// GetByName 按逻辑名称查找
func (r *Repository) GetByName(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byName[name]
	return def, ok
}
