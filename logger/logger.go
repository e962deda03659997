package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type contextKey string

// RequestIDKey carries the per-request id set by the request id middleware.
const RequestIDKey contextKey = "request_id"

type Logger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

func New(config Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if config.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	if config.Output != nil {
		l.SetOutput(config.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	return &Logger{logger: l, fields: make(logrus.Fields)}
}

// Nop returns a logger that discards everything; handy in tests.
func Nop() *Logger {
	return New(Config{Level: "panic", Output: io.Discard})
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	newFields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		newFields[k] = v
	}
	newFields[key] = value

	return &Logger{logger: l.logger, fields: newFields}
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{logger: l.logger, fields: newFields}
}

func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return l.WithField("request_id", id)
	}
	return l
}

func (l *Logger) Debug(msg string) {
	l.logger.WithFields(l.fields).Debug(msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.WithFields(l.fields).Debugf(format, args...)
}

func (l *Logger) Info(msg string) {
	l.logger.WithFields(l.fields).Info(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.WithFields(l.fields).Infof(format, args...)
}

func (l *Logger) Warn(msg string) {
	l.logger.WithFields(l.fields).Warn(msg)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.WithFields(l.fields).Warnf(format, args...)
}

func (l *Logger) Error(msg string) {
	l.logger.WithFields(l.fields).Error(msg)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.WithFields(l.fields).Errorf(format, args...)
}


// LogAPIRequest records one served HTTP request.
func (l *Logger) LogAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	l.WithFields(map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
		"type":        "api_request",
	}).Info("API request processed")
}

// LogRoomEvent records a chat room transition or fan-out event.
func (l *Logger) LogRoomEvent(roomID, event string, details map[string]interface{}) {
	fields := map[string]interface{}{
		"room_id": roomID,
		"event":   event,
		"type":    "room_event",
	}
	for k, v := range details {
		fields[k] = v
	}
	l.WithFields(fields).Info("Room event occurred")
}
