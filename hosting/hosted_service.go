package hosting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/ioc/logging"
)

// HostedService 托管服务接口
// 框架在独立 goroutine 中调用 Start，实现方无须自己起 goroutine
type HostedService interface {
	// Start 启动服务并阻塞，直到 context 取消或发生错误
	Start(ctx context.Context) error

	// Stop 执行额外的清理工作
	// Start 的 context 取消已经意味着停止，Stop 只补充收尾动作
	Stop(ctx context.Context) error
}

// NamedService 可选实现，为日志提供稳定的服务名
type NamedService interface {
	ServiceName() string
}

// serviceName 取日志用的服务标识，未命名时退化为类型名
func serviceName(svc HostedService) string {
	if named, ok := svc.(NamedService); ok {
		return named.ServiceName()
	}
	return fmt.Sprintf("%T", svc)
}

// HostedServiceManager 托管服务管理器
// 统一负责并发启动、反向停止与错误收集
type HostedServiceManager struct {
	services []HostedService
	logger   logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewHostedServiceManager 创建托管服务管理器
func NewHostedServiceManager(logger logging.Logger) *HostedServiceManager {
	return &HostedServiceManager{
		logger: logger.WithCategory("Hosting"),
	}
}

// Add 添加托管服务
func (m *HostedServiceManager) Add(service HostedService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, service)
}

// StartAll 并发启动所有托管服务
// 返回的通道收集启动失败；context 取消导致的退出不算失败
func (m *HostedServiceManager) StartAll(ctx context.Context) <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errCh := make(chan error, len(m.services))

	m.logger.Info("Starting hosted services",
		logging.Field{Key: "count", Value: len(m.services)})

	for _, service := range m.services {
		m.wg.Add(1)
		go func(svc HostedService) {
			defer m.wg.Done()
			name := serviceName(svc)

			m.logger.Debug("Hosted service starting",
				logging.Field{Key: "service", Value: name})

			err := svc.Start(ctx)
			switch {
			case err == nil:
				m.logger.Info("Hosted service completed",
					logging.Field{Key: "service", Value: name})
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				m.logger.Debug("Hosted service stopped",
					logging.Field{Key: "service", Value: name})
			default:
				m.logger.Error("Hosted service failed",
					logging.Field{Key: "service", Value: name},
					logging.Field{Key: "error", Value: err.Error()})
				// 缓冲区大小等于服务数，这里不会丢错误
				select {
				case errCh <- err:
				default:
				}
			}
		}(service)
	}

	return errCh
}

// StopAll 按注册顺序的逆序并发停止所有托管服务
func (m *HostedServiceManager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info("Stopping hosted services",
		logging.Field{Key: "count", Value: len(m.services)})

	var wg sync.WaitGroup
	for i := len(m.services) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(svc HostedService) {
			defer wg.Done()
			name := serviceName(svc)

			if err := svc.Stop(ctx); err != nil {
				m.logger.Error("Hosted service stop failed",
					logging.Field{Key: "service", Value: name},
					logging.Field{Key: "error", Value: err.Error()})
				return
			}
			m.logger.Debug("Hosted service stopped",
				logging.Field{Key: "service", Value: name})
		}(m.services[i])
	}
	wg.Wait()

	m.logger.Info("All hosted services stopped")
	return nil
}

// Wait 等待所有服务的 Start goroutine 退出
func (m *HostedServiceManager) Wait() {
	m.wg.Wait()
}

// BackgroundService 后台服务基类
// 内嵌后只需实现自己的工作循环，停止信号与完成通知由基类管理
type BackgroundService struct {
	name   string
	logger logging.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBackgroundService 创建后台服务
func NewBackgroundService(name string, logger logging.Logger) *BackgroundService {
	return &BackgroundService{
		name:   name,
		logger: logger.WithFields(logging.Field{Key: "service", Value: name}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// ServiceName 实现 NamedService
func (s *BackgroundService) ServiceName() string {
	return s.name
}

// Start 阻塞直到收到停止信号或 context 取消
func (s *BackgroundService) Start(ctx context.Context) error {
	s.logger.Info("Background service started")

	select {
	case <-s.stopCh:
	case <-ctx.Done():
	}

	s.Done()
	return nil
}

// Stop 发出停止信号并等待服务完成
func (s *BackgroundService) Stop(ctx context.Context) error {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	select {
	case <-s.doneCh:
		s.logger.Info("Background service stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Background service stop timed out")
		return ctx.Err()
	}
}

// ShouldStop 非阻塞地检查是否收到停止信号
func (s *BackgroundService) ShouldStop() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// StopChan 返回停止通道，工作循环在 select 中监听
func (s *BackgroundService) StopChan() <-chan struct{} {
	return s.stopCh
}

// Done 标记服务完成，可重复调用
func (s *BackgroundService) Done() {
	select {
	case <-s.doneCh:
	default:
		close(s.doneCh)
	}
}

// TimedHostedService 按固定间隔执行任务的托管服务
type TimedHostedService struct {
	*BackgroundService
	interval time.Duration
	task     func(ctx context.Context) error
}

// NewTimedHostedService 创建定时托管服务
func NewTimedHostedService(name string, interval time.Duration, task func(ctx context.Context) error, logger logging.Logger) *TimedHostedService {
	return &TimedHostedService{
		BackgroundService: NewBackgroundService(name, logger),
		interval:          interval,
		task:              task,
	}
}

// Start 启动定时循环
func (s *TimedHostedService) Start(ctx context.Context) error {
	defer s.Done()

	s.logger.Info("Timed service started",
		logging.Field{Key: "interval", Value: s.interval.String()})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.task(ctx); err != nil {
				// 单次任务失败只记录，循环继续
				s.logger.Error("Timed task failed",
					logging.Field{Key: "error", Value: err.Error()})
			}
		case <-s.StopChan():
			s.logger.Info("Timed service stopped")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
