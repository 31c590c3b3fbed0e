package config

import (
	"fmt"
	"sync"
)

// WatchableSource 支持变更通知的配置源
// 键变更时回调 onChange，由上层决定是否整体重载
type WatchableSource interface {
	ConfigurationSource
	StartWatch(onChange func()) error
	StopWatch()
}

// ReloadableConfiguration 可重载配置
// 读路径无锁（atomic 快照），Reload 整体替换数据
type ReloadableConfiguration interface {
	Configuration
	// Reload 重新加载所有配置源并原子替换当前数据
	Reload() error
	// OnReload 注册重载完成后的回调
	OnReload(callback func())
	// StartWatch 对所有可监听的配置源启动变更监听
	StartWatch() error
	// StopWatch 停止所有监听
	StopWatch()
}

// GetSources 返回已注册的配置源（按添加顺序）
func (b *ConfigurationBuilder) GetSources() []ConfigurationSource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sources := make([]ConfigurationSource, len(b.sources))
	copy(sources, b.sources)
	return sources
}

// BuildReloadable 构建可重载配置
func (b *ConfigurationBuilder) BuildReloadable() (ReloadableConfiguration, error) {
	r := &reloadableConfiguration{
		sources: b.GetSources(),
		store:   NewValueStore(),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// reloadableConfiguration 可重载配置实现
type reloadableConfiguration struct {
	sources   []ConfigurationSource
	store     *ValueStore
	callbacks []func()
	mu        sync.Mutex
}

// current 返回基于当前快照的只读视图
func (r *reloadableConfiguration) current() *configuration {
	return &configuration{data: r.store.Load()}
}

func (r *reloadableConfiguration) Get(key string) string {
	return r.current().Get(key)
}

func (r *reloadableConfiguration) GetWithDefault(key, defaultValue string) string {
	return r.current().GetWithDefault(key, defaultValue)
}

func (r *reloadableConfiguration) GetInt(key string) (int, error) {
	return r.current().GetInt(key)
}

func (r *reloadableConfiguration) GetBool(key string) (bool, error) {
	return r.current().GetBool(key)
}

func (r *reloadableConfiguration) GetSection(key string) Configuration {
	return r.current().GetSection(key)
}

func (r *reloadableConfiguration) Bind(key string, target any) error {
	return r.current().Bind(key, target)
}

func (r *reloadableConfiguration) GetAll() map[string]any {
	return r.current().GetAll()
}

func (r *reloadableConfiguration) Reload() error {
	data := make(map[string]any)
	for _, source := range r.sources {
		sourceData, err := source.Load()
		if err != nil {
			return fmt.Errorf("failed to load config source %s: %w", source.Name(), err)
		}
		mergeMaps(data, sourceData)
	}
	r.store.Store(data)

	r.mu.Lock()
	callbacks := make([]func(), len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.mu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
	return nil
}

func (r *reloadableConfiguration) OnReload(callback func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, callback)
}

func (r *reloadableConfiguration) StartWatch() error {
	for _, source := range r.sources {
		watchable, ok := source.(WatchableSource)
		if !ok {
			continue
		}
		if err := watchable.StartWatch(func() {
			// 变更后整体重载，局部失败不中断监听
			_ = r.Reload()
		}); err != nil {
			return fmt.Errorf("failed to watch config source %s: %w", source.Name(), err)
		}
	}
	return nil
}

func (r *reloadableConfiguration) StopWatch() {
	for _, source := range r.sources {
		if watchable, ok := source.(WatchableSource); ok {
			watchable.StopWatch()
		}
	}
}
