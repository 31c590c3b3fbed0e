package logging

// LoggingBuilder 日志配置构建器
type LoggingBuilder struct {
	factory LoggerFactory
}

// NewLoggingBuilder 创建日志构建器
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{
		factory: &loggerFactory{minimumLevel: LogLevelInfo},
	}
}

// SetMinimumLevel 设置最低日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.factory.SetMinimumLevel(level)
	return b
}

// AddProvider 添加日志提供者
func (b *LoggingBuilder) AddProvider(provider LoggerProvider) *LoggingBuilder {
	b.factory.AddProvider(provider)
	return b
}

// AddConsole 添加控制台日志提供者
func (b *LoggingBuilder) AddConsole(options ...ConsoleLoggerOptions) *LoggingBuilder {
	return b.AddProvider(NewConsoleLoggerProvider(options...))
}

// Build 返回配置好的日志工厂
func (b *LoggingBuilder) Build() LoggerFactory {
	return b.factory
}
