package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger 创建全局 logger：dev/test 使用彩色文本输出，其余环境输出 JSON。
func InitLogger(level slog.Level, environment string) *slog.Logger {
	l := New(os.Stderr, level, environment)
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w without touching the default logger.
func New(w io.Writer, level slog.Level, environment string) *slog.Logger {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "dev", "test", "":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

// ParseLogLevel 解析 LOG_LEVEL，未知值回退到 info。
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
