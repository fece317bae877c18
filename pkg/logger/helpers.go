package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Status values used in action records
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
	StatusRetry  = "RETRY"
)

// Action logs an ACTION/STATUS/REASON record, the shape every diagnostic
// line of the dashboard shares. FAILED records are logged at error level,
// RETRY records at warn, everything else at info.
func Action(l Logger, action, status, reason string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		merged[k] = v
	}
	merged["action"] = action
	merged["status"] = status
	if reason != "" {
		merged["reason"] = reason
	}

	msg := action
	if status != "" {
		msg = action + " " + status
	}

	switch status {
	case StatusFailed:
		l.ErrorWithFields(msg, merged)
	case StatusRetry:
		l.WarnWithFields(msg, merged)
	default:
		l.InfoWithFields(msg, merged)
	}
}

// LogRequest logs HTTP request information
func LogRequest(l Logger, method, path string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.InfoWithFields("HTTP request completed", fields)
	}
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) Close() error                                              { return nil }
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
