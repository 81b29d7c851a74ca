package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	tracing "contrarian-screener/internal/trace"
)

var (
	// Global logger instance; a no-op until Init is called so tests stay quiet
	globalLogger = zap.NewNop()
	// Whether detailed logging is enabled
	detailedLogging bool
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or console
	DetailedLogging bool   // Enable debug logs and caller information
}

// Init initializes the global logger based on environment variables
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// LoadConfigFromEnv loads logging configuration from environment variables
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
	}
}

// InitWithConfig initializes the logger with specific configuration
func InitWithConfig(config LogConfig) error {
	detailedLogging = config.DetailedLogging

	level := parseLogLevel(config.Level)
	if detailedLogging {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if config.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(level))

	opts := []zap.Option{zap.AddStacktrace(zapcore.DPanicLevel)}
	if detailedLogging {
		opts = append(opts, zap.AddCaller())
	}

	globalLogger = zap.New(core, opts...)
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = globalLogger.Sync()
}

// parseLogLevel converts string log level to a zap level
func parseLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// traceArgs extracts trace ID and span ID from context for logging
func traceArgs(ctx context.Context) []any {
	traceID, spanID, ok := tracing.GetTraceFields(ctx)
	if !ok {
		return nil
	}
	return []any{"trace_id", traceID, "span_id", spanID}
}

// Debug logs a debug message
func Debug(ctx context.Context, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, zapcore.DebugLevel, msg, 0, args...)
}

// Info logs an info message
func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, zapcore.InfoLevel, msg, 0, args...)
}

// Warn logs a warning message
func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, zapcore.WarnLevel, msg, 0, args...)
}

// Error logs an error message
func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, zapcore.ErrorLevel, msg, 0, args...)
}

// ErrorWithErr logs an error message with an error object and marks the active span failed
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	tracing.RecordError(trace.SpanFromContext(ctx), err)
	logWithTrace(ctx, zapcore.ErrorLevel, msg, 0, append([]any{"error", err}, args...)...)
}

// DebugSkip is Debug for wrappers that want the caller reported `skip` frames up
func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, zapcore.DebugLevel, msg, skip, args...)
}

// InfoSkip is Info for wrappers that want the caller reported `skip` frames up
func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, zapcore.InfoLevel, msg, skip, args...)
}

// ErrorWithErrSkip is ErrorWithErr for wrappers that want the caller reported `skip` frames up
func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	tracing.RecordError(trace.SpanFromContext(ctx), err)
	logWithTrace(ctx, zapcore.ErrorLevel, msg, skip, append([]any{"error", err}, args...)...)
}

// logWithTrace logs a message with trace ID and span ID if available.
// Two frames (logWithTrace and the exported wrapper) are always skipped.
func logWithTrace(ctx context.Context, level zapcore.Level, msg string, skip int, args ...any) {
	if ta := traceArgs(ctx); ta != nil {
		args = append(ta, args...)
	}

	sugar := globalLogger.WithOptions(zap.AddCallerSkip(2 + skip)).Sugar()
	switch level {
	case zapcore.DebugLevel:
		sugar.Debugw(msg, args...)
	case zapcore.WarnLevel:
		sugar.Warnw(msg, args...)
	case zapcore.ErrorLevel:
		sugar.Errorw(msg, args...)
	default:
		sugar.Infow(msg, args...)
	}
}

// OperationTimer measures an operation and closes its span
type OperationTimer struct {
	ctx    context.Context
	span   trace.Span
	start  time.Time
	fields []any
}

// StartOperation starts timing an operation with a span
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	ctx, span := tracing.StartSpan(ctx, operation)
	tracing.SetAttributes(span, fields...)

	Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)

	return &OperationTimer{
		ctx:    ctx,
		span:   span,
		start:  time.Now(),
		fields: append([]any{"operation", operation}, fields...),
	}
}

// End completes the operation timer and logs the duration
func (ot *OperationTimer) End(additionalFields ...any) {
	duration := time.Since(ot.start)
	tracing.SetAttributes(ot.span, append([]any{"duration_ms", duration.Milliseconds()}, additionalFields...)...)
	ot.span.End()

	fields := append(append([]any{}, ot.fields...), "duration_ms", duration.Milliseconds())
	Debug(ot.ctx, "Operation completed", append(fields, additionalFields...)...)
}

// EndWithError completes the operation timer with an error
func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	duration := time.Since(ot.start)
	tracing.RecordError(ot.span, err)
	ot.span.End()

	fields := append(append([]any{}, ot.fields...), "duration_ms", duration.Milliseconds(), "error", err)
	Error(ot.ctx, "Operation failed", append(fields, additionalFields...)...)
}

// Context returns the context carrying the operation span
func (ot *OperationTimer) Context() context.Context {
	return ot.ctx
}

// Signal logs a contrarian signal (always logged regardless of level)
func Signal(ctx context.Context, ticker, signal string, score float64, fields ...any) {
	span := trace.SpanFromContext(ctx)
	tracing.SetAttributes(span, "ticker", ticker, "signal", signal, "contrarian_score", score)

	allFields := append([]any{
		"type", "SIGNAL",
		"ticker", ticker,
		"signal", signal,
		"contrarian_score", score,
	}, fields...)
	logWithTrace(ctx, zapcore.InfoLevel, "Contrarian signal", 0, allFields...)
}
