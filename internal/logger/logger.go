package logger

import (
	"os"

	"github.com/xppcnn/apiclient/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface shared with the client library.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Init initializes a zap SugaredLogger using settings from config.
func Init(cfg *config.Config) (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stderr)),
		parseLevel(cfg.LogLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar := logger.Sugar()
	S = sugar
	return sugar, nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Minimal object logging helpers -------------------------------------------------
// These are tiny wrappers that log the given object as a structured field named
// `key` and do not attempt to parse arbitrary kv arrays.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Debug(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}

// Global returns a Logger that forwards to the package-level helpers.
func Global() Logger { return global{} }

type global struct{}

func (global) InfoObj(msg, key string, obj interface{})  { InfoObj(msg, key, obj) }
func (global) DebugObj(msg, key string, obj interface{}) { DebugObj(msg, key, obj) }
func (global) WarnObj(msg, key string, obj interface{})  { WarnObj(msg, key, obj) }
func (global) ErrorObj(msg, key string, obj interface{}) { ErrorObj(msg, key, obj) }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}
