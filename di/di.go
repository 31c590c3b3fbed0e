package di

import (
	"fmt"
	"reflect"
)

// TypeOf 获取类型 T 的 reflect.Type（泛型辅助函数）
//
// 示例：
//
//	userServiceType := di.TypeOf[*UserService]()
//	instance, _ := container.Get(userServiceType)
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register 以类型 T 注册一条定义
// 默认开启全部自动装配能力；注册即配置编译，无效配置直接 panic
//
// 示例：
//
//	di.Register[*UserService](c, di.WithName("users"))
func Register[T any](c Container, opts ...Option) {
	cfg := DefinitionConfig{
		Concrete: TypeOf[T](),
		Autowire: AutowireAll(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := c.Add(cfg); err != nil {
		panic(fmt.Sprintf("di: failed to register %v: %v", cfg.Concrete, err))
	}
}

// RegisterValue 将预构建实例注册为类型 T 的值定义
// T 可以是接口，实例按 T 入仓库索引
func RegisterValue[T any](c Container, value T, opts ...Option) {
	opts = append([]Option{WithInstance(value)}, opts...)
	Register[T](c, opts...)
}

// Resolve 从容器解析类型 T 的实例
func Resolve[T any](c Container) (T, error) {
	var zero T
	val, err := c.Get(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	instance, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("di: resolved value is %T, expected %v", val, TypeOf[T]())
	}
	return instance, nil
}

// ResolveByName 按逻辑名称解析并断言为 T
func ResolveByName[T any](c Container, name string) (T, error) {
	var zero T
	val, err := c.GetByName(name)
	if err != nil {
		return zero, err
	}
	instance, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("di: definition %q resolved to %T, expected %v", name, val, TypeOf[T]())
	}
	return instance, nil
}

// MustResolve Resolve 的 panic 版本，用于启动路径上的必备服务
func MustResolve[T any](c Container) T {
	instance, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %v: %v", TypeOf[T](), err))
	}
	return instance
}
