package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// InfoLogger logs informational messages
	InfoLogger *zap.SugaredLogger
	// ErrorLogger logs error messages
	ErrorLogger *zap.SugaredLogger
	// DebugLogger logs debug messages
	DebugLogger *zap.SugaredLogger
)

// InitLogger initializes the loggers. Each level is written to its own
// dated file under logsDir.
func InitLogger(logsDir string) error {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %v", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	info, err := newFileLogger(filepath.Join(logsDir, fmt.Sprintf("info-%s.log", timestamp)), zapcore.InfoLevel)
	if err != nil {
		return fmt.Errorf("failed to open info log file: %v", err)
	}
	errLog, err := newFileLogger(filepath.Join(logsDir, fmt.Sprintf("error-%s.log", timestamp)), zapcore.ErrorLevel)
	if err != nil {
		return fmt.Errorf("failed to open error log file: %v", err)
	}
	debug, err := newFileLogger(filepath.Join(logsDir, fmt.Sprintf("debug-%s.log", timestamp)), zapcore.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to open debug log file: %v", err)
	}

	InfoLogger, ErrorLogger, DebugLogger = info, errLog, debug
	return nil
}

func newFileLogger(path string, level zapcore.Level) (*zap.SugaredLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(file), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(), nil
}

// SyncLoggers flushes buffered log entries
func SyncLoggers() {
	for _, l := range []*zap.SugaredLogger{InfoLogger, ErrorLogger, DebugLogger} {
		if l != nil {
			_ = l.Sync()
		}
	}
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	if InfoLogger != nil {
		InfoLogger.Infof(format, v...)
	}
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	if ErrorLogger != nil {
		ErrorLogger.Errorf(format, v...)
	}
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	if DebugLogger != nil {
		DebugLogger.Debugf(format, v...)
	}
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip string, status int, duration time.Duration) {
	if InfoLogger != nil {
		InfoLogger.Infow("Request",
			"method", method,
			"path", path,
			"ip", ip,
			"status", status,
			"duration", duration,
		)
	}
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	if ErrorLogger != nil {
		ErrorLogger.Errorf("Error: %v\nStack Trace:\n%s", err, stack)
	}
}
