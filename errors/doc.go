// Package errors provides structured error types for livefeed with
// machine-readable codes and retryable detection.
package errors
