package logger

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with screening-specific functionality
type Logger struct {
	*zap.Logger
	serviceName string
}

// ContextKey for request context values
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	SubjectKey   ContextKey = "subject"
)

// New creates a new logger instance
func New(serviceName, environment string, debug bool) (*Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Add service metadata
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     environment,
		"pid":     os.Getpid(),
	}

	zapLogger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger:      zapLogger,
		serviceName: serviceName,
	}, nil
}

// FromZap wraps an existing zap logger
func FromZap(z *zap.Logger, serviceName string) *Logger {
	return &Logger{
		Logger:      z,
		serviceName: serviceName,
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return FromZap(zap.NewNop(), "")
}

// Named returns a named sub-logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		Logger:      l.Logger.Named(name),
		serviceName: l.serviceName,
	}
}

// WithContext returns a logger carrying the request id, subject and active span of ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := []zap.Field{}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if subject, ok := ctx.Value(SubjectKey).(string); ok && subject != "" {
		fields = append(fields, zap.String("subject", subject))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	return &Logger{
		Logger:      l.With(fields...),
		serviceName: l.serviceName,
	}
}

// WithPayment returns a logger with payment context
func (l *Logger) WithPayment(paymentID, transactionID string) *Logger {
	return &Logger{
		Logger: l.With(
			zap.String("payment_id", paymentID),
			zap.String("transaction_id", transactionID),
		),
		serviceName: l.serviceName,
	}
}

// ScreeningStarted logs the start of a payment screening
func (l *Logger) ScreeningStarted(paymentID string) {
	l.Debug("screening started",
		zap.String("payment_id", paymentID),
	)
}

// ScreeningCompleted logs the completion of a payment screening
func (l *Logger) ScreeningCompleted(paymentID, decision, flaggedSide string, riskScore float64, durationMs int64) {
	l.Info("screening completed",
		zap.String("payment_id", paymentID),
		zap.String("decision", decision),
		zap.String("flagged_side", flaggedSide),
		zap.Float64("risk_score", riskScore),
		zap.Int64("duration_ms", durationMs),
	)
}

// EntityScreened logs the outcome of a single entity screening
func (l *Logger) EntityScreened(decision string, riskScore float64, matches int, degraded bool, durationMs int64) {
	l.Debug("entity screened",
		zap.String("decision", decision),
		zap.Float64("risk_score", riskScore),
		zap.Int("matches", matches),
		zap.Bool("degraded", degraded),
		zap.Int64("duration_ms", durationMs),
	)
}

// SemanticDegraded logs that semantic matching was skipped for a screening
func (l *Logger) SemanticDegraded(err error) {
	l.Warn("semantic matching degraded",
		zap.Error(err),
	)
}

// ReferenceListLoaded logs a reference list snapshot swap
func (l *Logger) ReferenceListLoaded(version uint64, entries int, durationMs int64) {
	l.Info("reference list loaded",
		zap.Uint64("version", version),
		zap.Int("entries", entries),
		zap.Int64("duration_ms", durationMs),
	)
}

// AuditFailed logs a result that could not be persisted or published
func (l *Logger) AuditFailed(paymentID string, err error) {
	l.Warn("audit sink failed",
		zap.String("payment_id", paymentID),
		zap.Error(err),
	)
}

// CandidateAnomaly logs a match candidate whose score was out of range
func (l *Logger) CandidateAnomaly(entryID, matchType string, score float64, action string) {
	l.Warn("candidate score out of range",
		zap.String("sanctions_entry_id", entryID),
		zap.String("match_type", matchType),
		zap.Float64("score", score),
		zap.String("action", action),
	)
}

// LatencyWarning logs when a check exceeds expected latency
func (l *Logger) LatencyWarning(checkType string, durationMs, thresholdMs int64) {
	l.Warn("latency threshold exceeded",
		zap.String("check_type", checkType),
		zap.Int64("duration_ms", durationMs),
		zap.Int64("threshold_ms", thresholdMs),
	)
}

// Helper field functions

// ErrorField creates an error field
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

// DurationField creates a duration field
func DurationField(name string, d time.Duration) zap.Field {
	return zap.Duration(name, d)
}

// StringField creates a string field
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField creates an int field
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Float64Field creates a float64 field
func Float64Field(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// BoolField creates a bool field
func BoolField(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}
