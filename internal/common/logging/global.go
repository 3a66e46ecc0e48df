package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	globalMu     sync.RWMutex
	globalLogger Logger
)

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the process-wide logger, creating an info-level
// stdout logger on first use.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewZapLogger(Config{Level: os.Getenv("LOG_LEVEL")})
	}
	return globalLogger
}

// InitGlobalLogger installs a logger for levelName writing to logFileName,
// or to stdout when logFileName is empty.
func InitGlobalLogger(levelName, logFileName string) error {
	config := Config{Level: levelName, TimeFormat: time.RFC3339}
	if logFileName != "" {
		file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFileName, err)
		}
		config.Output = file
	}

	logger := NewZapLogger(config)
	SetGlobalLogger(logger)

	logger.Info("Logger initialized",
		String("level", ParseLevel(levelName).CapitalString()),
		String("log_file", logFileName),
	)
	return nil
}

// MustSync flushes the global logger. Call it before exit.
func MustSync() {
	if zapLogger, ok := GetGlobalLogger().(*ZapAdapter); ok {
		_ = zapLogger.Sync()
	}
}

func Info(msg string, fields ...Field) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, err error, fields ...Field) {
	GetGlobalLogger().Error(msg, err, fields...)
}
