package config

import (
	"fmt"
	"sync"
)

// Option 静态配置选项（应用生命周期内不变）
// 在应用启动时加载一次，之后不再更新
type Option[T any] interface {
	Value() T
}

// OptionMonitor 监听配置选项（实时更新，框架自动处理）
// 总是返回最新的配置值，框架会自动监听配置变更并更新
type OptionMonitor[T any] interface {
	Value() T
}

// OptionsCache 配置缓存，用于存储和自动更新配置
type OptionsCache[T any] struct {
	config  Configuration
	section string
	current T
	mu      sync.RWMutex
}

// NewOptionsCache 创建配置缓存
func NewOptionsCache[T any](config Configuration, section string) *OptionsCache[T] {
	cache := &OptionsCache[T]{
		config:  config,
		section: section,
	}

	// 初始加载配置
	if err := cache.reload(); err != nil {
		// 如果配置不存在，使用零值
		var zero T
		cache.current = zero
	}

	// 如果 Configuration 支持重载回调，则注册
	if rc, ok := config.(interface{ OnReload(func()) }); ok {
		rc.OnReload(func() {
			cache.reload()
		})
	}

	return cache
}

// reload 重新加载配置
func (c *OptionsCache[T]) reload() error {
	var newValue T

	// 从配置中绑定
	if err := c.config.Bind(c.section, &newValue); err != nil {
		return fmt.Errorf("failed to bind config section %s: %w", c.section, err)
	}

	c.mu.Lock()
	c.current = newValue
	c.mu.Unlock()

	return nil
}

// Get 获取当前配置值
func (c *OptionsCache[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// option 实现 Option[T] 接口
type option[T any] struct {
	value T
}

func (o *option[T]) Value() T {
	return o.value
}

// NewOption 创建静态配置选项
func NewOption[T any](value T) Option[T] {
	return &option[T]{value: value}
}

// optionMonitor 实现 OptionMonitor[T] 接口
type optionMonitor[T any] struct {
	cache *OptionsCache[T]
}

func (o *optionMonitor[T]) Value() T {
	return o.cache.Get()
}

// NewOptionMonitor 创建监听配置选项
func NewOptionMonitor[T any](cache *OptionsCache[T]) OptionMonitor[T] {
	return &optionMonitor[T]{cache: cache}
}
