package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/requestid"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	loggerContextKey    contextKey = "logger"
	sessionIDContextKey contextKey = "session_id"
	userIDContextKey    contextKey = "user_id"
	rootErrorContextKey contextKey = "root_err"
)

type rootErrorContainer struct {
	err error
}

// Logger wraps zap.Logger to enforce structured logging standards
type Logger struct {
	zap         *zap.Logger
	serviceName string
}

// Field represents a structured log field
type Field = zapcore.Field

// New creates a JSON logger writing to stdout.
// level: "debug", "info", "warn", "error"
func New(serviceName string, level string) (*Logger, error) {
	return NewWithWriter(serviceName, level, os.Stdout)
}

// NewWithWriter is New with an explicit sink. The CLI logs to stderr so that
// rendered boards on stdout stay clean.
func NewWithWriter(serviceName, level string, w io.Writer) (*Logger, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("serviceName is required")
	}
	if w == nil {
		return nil, fmt.Errorf("writer is required")
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(parseLevel(level)),
	)

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).
		With(zap.String("service", serviceName))

	return &Logger{zap: z, serviceName: serviceName}, nil
}

// Nop returns a logger that discards everything. Used by tests and library callers
// that do not care about logs.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop(), serviceName: "nop"}
}

// Named returns a child logger whose entries carry the given service suffix.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name), serviceName: l.serviceName}
}

// Module returns a field for the module/component
func Module(name string) Field {
	return zap.String("module", name)
}

// Action returns a field for the action/operation
func Action(name string) Field {
	return zap.String("action", name)
}

// OpportunityID tags a log line with the opportunity it concerns.
func OpportunityID(id int64) Field {
	return zap.Int64("opportunity_id", id)
}

// Err is zap.Error re-exported so callers need a single import.
func Err(err error) Field {
	return zap.Error(err)
}

// Info logs an info message. module and action default to "unknown".
func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a debug message.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...Field) {
	if ce := l.zap.Check(level, msg); ce != nil {
		ce.Write(l.fields(ctx, fields)...)
	}
}

func (l *Logger) fields(ctx context.Context, fields []Field) []Field {
	out := make([]Field, 0, len(fields)+5)

	if ctx != nil {
		if id := requestid.GetRequestID(ctx); id != "" {
			out = append(out, zap.String("request_id", id))
		}
		if id := GetSessionIDFromContext(ctx); id != "" {
			out = append(out, zap.String("session_id", id))
		}
		if id, ok := GetUserIDFromContext(ctx); ok {
			out = append(out, zap.Int64("user_id", id))
		}
	}

	hasModule, hasAction := false, false
	for _, f := range sanitizeFields(fields) {
		switch f.Key {
		case "module":
			hasModule = true
		case "action":
			hasAction = true
		}
		out = append(out, f)
	}
	if !hasModule {
		out = append(out, zap.String("module", "unknown"))
	}
	if !hasAction {
		out = append(out, zap.String("action", "unknown"))
	}
	return out
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

var forbiddenKeys = map[string]bool{
	"authorization": true,
	"token":         true,
	"access_token":  true,
	"password":      true,
	"secret":        true,
	"api_key":       true,
	"redis_url":     true,
	"jwt":           true,
	"bearer":        true,
	"credential":    true,
	"cookie":        true,
	// PII that should never be logged directly
	"email":        true,
	"phone":        true,
	"full_name":    true,
	"contact_name": true,
	"address":      true,
}

// sanitizeFields replaces the value of secret-bearing keys with a marker.
func sanitizeFields(fields []Field) []Field {
	sanitized := make([]Field, 0, len(fields))
	for _, field := range fields {
		if forbiddenKeys[strings.ToLower(field.Key)] {
			sanitized = append(sanitized, zap.String(field.Key, "[REDACTED]"))
			continue
		}
		sanitized = append(sanitized, field)
	}
	return sanitized
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Context value getters

func GetSessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDContextKey).(string); ok {
		return id
	}
	return ""
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDContextKey).(int64)
	return id, ok
}

// Context value setters

func SetSessionIDInContext(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

func SetUserIDInContext(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetLogger retrieves logger from context, falling back to a no-op logger.
func GetLogger(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return l
	}
	return Nop()
}

// SetLoggerInContext stores logger in context
func SetLoggerInContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// InitRootErrorContext initializes context with a pointer to hold the root error
func InitRootErrorContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, rootErrorContextKey, &rootErrorContainer{})
}

// SetRootError records the root cause so the request logger can report it.
func SetRootError(ctx context.Context, err error) {
	if container, ok := ctx.Value(rootErrorContextKey).(*rootErrorContainer); ok {
		container.err = err
	}
}

// GetRootError retrieves the root cause error from the context container
func GetRootError(ctx context.Context) error {
	if container, ok := ctx.Value(rootErrorContextKey).(*rootErrorContainer); ok {
		return container.err
	}
	return nil
}
