package cron

import (
	"context"
	"fmt"
	"sync"

	"github.com/gocrud/ioc/logging"
	"github.com/robfig/cron/v3"
)

// service Cron 调度器的托管服务封装
// 作为 HostedService 挂进应用生命周期，随应用启停
type service struct {
	cron    *cron.Cron
	logger  logging.Logger
	mu      sync.RWMutex
	entries map[string]cron.EntryID
}

// options Cron 服务配置选项
type options struct {
	// Location 时区，默认 UTC
	Location string
	// EnableSeconds 启用秒级精度（默认分钟级）
	EnableSeconds bool
	// Logger 自定义日志记录器
	Logger logging.Logger
	// EnableCronLogger 输出 cron 库的内部调度日志
	EnableCronLogger bool
}

// newService 创建 Cron 托管服务
func newService(logger logging.Logger, opts ...func(*options)) *service {
	opt := &options{
		Location: "UTC",
		Logger:   logger,
	}
	for _, o := range opts {
		o(opt)
	}

	scheduleLogger := newCronLogger(opt.Logger.WithCategory("Cron"))

	// 任务 panic 由调度链兜住，不拖垮调度器
	cronOpts := []cron.Option{
		cron.WithChain(cron.Recover(scheduleLogger)),
	}
	if opt.EnableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(scheduleLogger))
	}
	if opt.EnableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &service{
		cron:    cron.New(cronOpts...),
		logger:  opt.Logger,
		entries: make(map[string]cron.EntryID),
	}
}

// addJob 按表达式登记一个任务
// spec 形如 "0 */5 * * * *"；name 用于管理与日志
func (s *service) addJob(spec, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug("Cron job started",
			logging.Field{Key: "job", Value: name})
		job()
		s.logger.Debug("Cron job completed",
			logging.Field{Key: "job", Value: name})
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job '%s': %w", name, err)
	}

	s.entries[name] = entryID
	s.logger.Info("Cron job registered",
		logging.Field{Key: "job", Value: name},
		logging.Field{Key: "spec", Value: spec})
	return nil
}

// removeJob 按名称移除任务
func (s *service) removeJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.entries[name]
	if !exists {
		return
	}
	s.cron.Remove(entryID)
	delete(s.entries, name)
	s.logger.Info("Cron job removed",
		logging.Field{Key: "job", Value: name})
}

// ServiceName 实现 hosting.NamedService
func (s *service) ServiceName() string {
	return "cron"
}

// Start 实现 HostedService.Start
func (s *service) Start(ctx context.Context) error {
	s.mu.RLock()
	count := len(s.entries)
	s.mu.RUnlock()

	s.logger.Info("Cron scheduler started",
		logging.Field{Key: "jobs", Value: count})
	s.cron.Start()

	<-ctx.Done()
	return nil
}

// Stop 实现 HostedService.Stop
// 等待正在执行的任务收尾，超出调用方给的期限则放弃等待
func (s *service) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		s.logger.Info("Cron scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Cron scheduler stop timed out")
	}
	return nil
}

// cronLogger 把框架日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.Field{Key: "error", Value: err.Error()})
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Field{
			Key:   fmt.Sprintf("%v", keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return fields
}
