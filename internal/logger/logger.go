package logger

import (
	"fmt"
	"os"
	"vocab-quiz/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "vocab-quiz"

// log stays a no-op until Initialize, so packages can log from tests.
var log = zap.NewNop()

// Initialize replaces the global logger. Production writes JSON, anything else
// a console format. Level accepts debug, info, warn, error; empty means info.
func Initialize(loggerCfg config.LoggerConfig) error {
	level := zapcore.InfoLevel
	if loggerCfg.Level != "" {
		parsed, err := zapcore.ParseLevel(loggerCfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", loggerCfg.Level, err)
		}
		level = parsed
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if loggerCfg.Env == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("service", serviceName), zap.String("env", loggerCfg.Env))
	return nil
}

func Get() *zap.Logger {
	return log
}

// Sync flushes buffered entries. Call it before exit.
func Sync() error {
	return log.Sync()
}
