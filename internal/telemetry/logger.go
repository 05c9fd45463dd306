package telemetry

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger configures the global logger. Console output goes to stderr so
// reports on stdout stay clean; logFile, when set, receives JSON entries too.
func InitLogger(debug bool, logFile string) error {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}

	SetLogger(zap.New(zapcore.NewTee(cores...)))
	return nil
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	zap.ReplaceGlobals(l)
}

// LogDebug logs a debug message.
func LogDebug(msg string, fields ...zap.Field) {
	zap.L().Debug(msg, fields...)
}

// LogInfo logs an info message.
func LogInfo(msg string, fields ...zap.Field) {
	zap.L().Info(msg, fields...)
}

// LogWarn logs a warning.
func LogWarn(msg string, fields ...zap.Field) {
	zap.L().Warn(msg, fields...)
}

// LogError logs an error message.
func LogError(msg string, err error, fields ...zap.Field) {
	zap.L().Error(msg, append(fields, zap.Error(err))...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = zap.L().Sync()
}
