package logger

import "sync"

var (
	globalMu sync.RWMutex
	global   = NewDefault("")
)

// Init replaces the package-level logger. Call once at startup, before
// anything logs through the package-level functions.
func Init(cfg *Config, serviceName string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = New(cfg, serviceName)
}

// Global returns the package-level logger.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Debug logs a debug message on the package-level logger.
func Debug(msg string, fields ...map[string]interface{}) {
	Global().Debug(msg, fields...)
}

// Info logs an info message on the package-level logger.
func Info(msg string, fields ...map[string]interface{}) {
	Global().Info(msg, fields...)
}

// Warn logs a warning message on the package-level logger.
func Warn(msg string, fields ...map[string]interface{}) {
	Global().Warn(msg, fields...)
}

// Error logs an error message on the package-level logger.
func Error(msg string, fields ...map[string]interface{}) {
	Global().Error(msg, fields...)
}
