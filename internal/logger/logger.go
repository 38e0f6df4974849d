package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/segyhp/loan-engine/internal/config"
)

// ParseLevel maps LOG_LEVEL onto a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// New builds the process logger from the logging configuration
func New(cfg *config.Config) (*zap.Logger, error) {
	level := ParseLevel(cfg.Logging.Level)

	zapConfig := zap.NewProductionConfig()
	if cfg.Logging.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.MessageKey = "message"
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.DisableStacktrace = level != zap.DebugLevel

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("env", cfg.Server.Env)), nil
}
