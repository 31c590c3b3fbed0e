package logging

// NewLogger 创建带控制台输出的默认日志记录器
func NewLogger(category string) Logger {
	return NewLoggingBuilder().AddConsole().Build().CreateLogger(category)
}

// NewNopLogger 创建丢弃所有输出的日志记录器
// 未显式配置日志时作为缺省值，调用方无须判空
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Trace(string, ...Field)         {}
func (nopLogger) Debug(string, ...Field)         {}
func (nopLogger) Info(string, ...Field)          {}
func (nopLogger) Warn(string, ...Field)          {}
func (nopLogger) Error(string, ...Field)         {}
func (nopLogger) Fatal(string, ...Field)         {}
func (nopLogger) Log(LogLevel, string, ...Field) {}
func (nopLogger) WithFields(...Field) Logger     { return nopLogger{} }
func (nopLogger) WithCategory(string) Logger     { return nopLogger{} }
