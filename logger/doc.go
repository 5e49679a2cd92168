// Package logger provides structured logging for livefeed using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.NewDefault("livefeed").WithComponent("feed")
//	log.Info("stream open", logger.Fields("endpoint", url))
package logger
