package logging

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LogEntry 一条结构化日志记录
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Category  string
	Message   string
	Fields    []Field
}

// Formatter 日志格式化器接口
type Formatter interface {
	Format(entry *LogEntry) string
}

// TextFormatter 文本格式化器
type TextFormatter struct {
	TimeFormat string
	Colorize   bool
}

// NewTextFormatter 创建文本格式化器
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		TimeFormat: "2006-01-02 15:04:05.000",
		Colorize:   true,
	}
}

func (f *TextFormatter) Format(entry *LogEntry) string {
	var sb strings.Builder

	sb.WriteString(entry.Timestamp.Format(f.TimeFormat))
	sb.WriteString(" ")

	level := entry.Level.String()
	if f.Colorize {
		level = colorizeLevel(entry.Level, level)
	}
	sb.WriteString(fmt.Sprintf("%-5s", level))

	if entry.Category != "" {
		sb.WriteString(" [")
		sb.WriteString(entry.Category)
		sb.WriteString("]")
	}

	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	for _, field := range entry.Fields {
		sb.WriteString(fmt.Sprintf(" %s=%v", field.Key, field.Value))
	}

	return sb.String()
}

func colorizeLevel(level LogLevel, text string) string {
	switch level {
	case LogLevelTrace:
		return "\033[37m" + text + "\033[0m" // 灰
	case LogLevelDebug:
		return "\033[36m" + text + "\033[0m" // 青
	case LogLevelInfo:
		return "\033[32m" + text + "\033[0m" // 绿
	case LogLevelWarn:
		return "\033[33m" + text + "\033[0m" // 黄
	case LogLevelError:
		return "\033[31m" + text + "\033[0m" // 红
	case LogLevelFatal:
		return "\033[35m" + text + "\033[0m" // 紫
	default:
		return text
	}
}

// JSONFormatter JSON 格式化器
type JSONFormatter struct {
	TimeFormat string
}

// NewJSONFormatter 创建 JSON 格式化器
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{TimeFormat: time.RFC3339Nano}
}

func (f *JSONFormatter) Format(entry *LogEntry) string {
	data := map[string]any{
		"time":    entry.Timestamp.Format(f.TimeFormat),
		"level":   entry.Level.String(),
		"message": entry.Message,
	}
	if entry.Category != "" {
		data["category"] = entry.Category
	}
	for _, field := range entry.Fields {
		data[field.Key] = field.Value
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":"failed to marshal log entry: %v"}`, err)
	}
	return string(bytes)
}
