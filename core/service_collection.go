package core

import (
	"reflect"

	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
)

// ServiceCollection 服务集合
// ConfigureServices 阶段的注册入口，底层是 DI 容器的定义仓库
type ServiceCollection struct {
	container          di.Container
	logger             logging.Logger
	hostedServiceTypes []reflect.Type
}

// Container 返回底层的 DI 容器
func (s *ServiceCollection) Container() di.Container {
	return s.container
}

// AddService 注册服务 T（泛型语法糖）
//
// 示例:
//
//	core.AddService[*UserService](services)
//	core.AddService[*OrderService](services, di.WithName("orders"))
func AddService[T any](s *ServiceCollection, opts ...di.Option) {
	di.Register[T](s.container, opts...)
}

// AddServiceValue 将预构建实例注册为服务 T
// T 可以是接口，基础设施客户端用这种方式入容器
func AddServiceValue[T any](s *ServiceCollection, value T, opts ...di.Option) {
	di.RegisterValue[T](s.container, value, opts...)
}

// AddHostedService 注册托管服务 T
// T 必须实现 hosting.HostedService；实例在应用 Build 阶段从容器解析
func AddHostedService[T any](s *ServiceCollection, opts ...di.Option) {
	di.Register[T](s.container, opts...)
	s.hostedServiceTypes = append(s.hostedServiceTypes, di.TypeOf[T]())
}
