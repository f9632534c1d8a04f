package logger

import (
	"os"
	"strings"
	"time"

	"automation-worker/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new logger based on the log configuration.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	var cores []zapcore.Core

	// Console output
	var consoleEncoder zapcore.Encoder
	if strings.EqualFold(cfg.Env, "production") {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig(zapcore.LowercaseLevelEncoder, ""))
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(encoderConfig(zapcore.CapitalColorLevelEncoder, ""))
	}
	cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level))

	// File output if LOG_FILE is set
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(encoderConfig(zapcore.LowercaseLevelEncoder, "stacktrace"))
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func encoderConfig(levelEncoder zapcore.LevelEncoder, stacktraceKey string) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  stacktraceKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// ParseLevel maps LOG_LEVEL values to zap levels, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Component returns a child logger tagged with the component name.
func Component(logger *zap.Logger, name string, fields ...zap.Field) *zap.Logger {
	return logger.With(append([]zap.Field{zap.String("component", name)}, fields...)...)
}

// LogDuration performance logging helper
func LogDuration(logger *zap.Logger, operation string, started time.Time, fields ...zap.Field) {
	fields = append(fields,
		zap.String("operation", operation),
		zap.Int64("duration_ms", time.Since(started).Milliseconds()),
	)
	logger.Info("operation completed", fields...)
}
