// Package log 负责创建 licext 使用的结构化日志器。
package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// 支持的日志输出格式。
const (
	// TextFormat 是面向终端的默认文本格式。
	TextFormat = "text"
	// JSONFormat 每行输出一个 JSON 对象。
	JSONFormat = "json"
	// LogfmtFormat 输出 key=value 形式的 logfmt。
	LogfmtFormat = "logfmt"
)

// New 按级别和格式创建日志器，前缀固定为 licext。
func New(writer io.Writer, level string, format string) (*log.Logger, error) {
	formatter, err := GetFormatter(format)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(writer, log.Options{
		Prefix:    "licext",
		Level:     GetLevel(level),
		Formatter: formatter,
	}), nil
}

// Discard 返回不输出任何内容的日志器，供测试和库调用方使用。
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// GetLevel 把字符串解析为日志级别，无法识别时返回 info。
func GetLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "fatal", "panic":
		return log.FatalLevel
	case "error":
		return log.ErrorLevel
	case "warn", "warning":
		return log.WarnLevel
	case "debug", "trace":
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// ValidLevel 判断级别字符串是否可识别（空字符串视为 info）。
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "fatal", "panic", "error", "warn", "warning", "info", "debug", "trace":
		return true
	default:
		return false
	}
}

// GetFormatter 返回日志格式对应的 formatter。
func GetFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case TextFormat, "":
		return log.TextFormatter, nil
	case JSONFormat:
		return log.JSONFormatter, nil
	case LogfmtFormat:
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q", format)
	}
}
