package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ConsoleLoggerOptions 控制台日志选项
type ConsoleLoggerOptions struct {
	Formatter Formatter
	Output    io.Writer
}

// ConsoleLoggerProvider 控制台日志提供者
type ConsoleLoggerProvider struct {
	options      ConsoleLoggerOptions
	minimumLevel LogLevel
	mu           sync.Mutex
}

// NewConsoleLoggerProvider 创建控制台日志提供者
func NewConsoleLoggerProvider(options ...ConsoleLoggerOptions) *ConsoleLoggerProvider {
	opts := ConsoleLoggerOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	if opts.Formatter == nil {
		opts.Formatter = NewTextFormatter()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &ConsoleLoggerProvider{options: opts}
}

func (p *ConsoleLoggerProvider) CreateLogger(category string) Logger {
	return &consoleLogger{provider: p, category: category}
}

func (p *ConsoleLoggerProvider) SetMinimumLevel(level LogLevel) {
	p.minimumLevel = level
}

func (p *ConsoleLoggerProvider) write(entry *LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.options.Output, p.options.Formatter.Format(entry))
}

// consoleLogger 控制台日志记录器
type consoleLogger struct {
	provider *ConsoleLoggerProvider
	category string
	fields   []Field
}

func (l *consoleLogger) Trace(msg string, fields ...Field) { l.Log(LogLevelTrace, msg, fields...) }
func (l *consoleLogger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *consoleLogger) Info(msg string, fields ...Field)  { l.Log(LogLevelInfo, msg, fields...) }
func (l *consoleLogger) Warn(msg string, fields ...Field)  { l.Log(LogLevelWarn, msg, fields...) }
func (l *consoleLogger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *consoleLogger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	os.Exit(1)
}

func (l *consoleLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.provider.minimumLevel {
		return
	}
	l.provider.write(&LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Category:  l.category,
		Message:   msg,
		Fields:    append(l.fields, fields...),
	})
}

func (l *consoleLogger) WithFields(fields ...Field) Logger {
	return &consoleLogger{
		provider: l.provider,
		category: l.category,
		fields:   append(l.fields, fields...),
	}
}

func (l *consoleLogger) WithCategory(category string) Logger {
	return &consoleLogger{
		provider: l.provider,
		category: category,
		fields:   l.fields,
	}
}
