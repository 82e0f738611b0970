package config

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/lumberjack.v2"
)

// LogWriter is the writer used for application, request and database logs.
var LogWriter io.Writer = os.Stdout

// InitLogging points the standard logger, gin and slog at stdout plus the
// optional rotating file, and returns the JSON logger. Close the returned
// closer on shutdown; it is nil when no file is configured.
func InitLogging(cfg LogConfig) (*slog.Logger, io.Closer) {
	var rotator *lumberjack.Logger
	writers := []io.Writer{os.Stdout}
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
		writers = append(writers, rotator)
	}

	LogWriter = io.MultiWriter(writers...)
	log.SetOutput(LogWriter)
	gin.DefaultWriter = LogWriter
	gin.DefaultErrorWriter = LogWriter

	logger := NewLogger(LogWriter, cfg.Level)
	slog.SetDefault(logger)
	logger.Info("logger initialized", "level", cfg.Level, "file", cfg.File)

	if rotator == nil {
		return logger, nil
	}
	return logger, rotator
}

// NewLogger returns a JSON logger writing to w at the named level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
