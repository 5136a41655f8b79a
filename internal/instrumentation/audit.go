package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// CommandRecord captures one dispatched command for audit logging.
type CommandRecord struct {
	Command    string
	Service    string
	ResourceID string // spreadsheet, document or presentation id, when known

	StartTime time.Time
	Duration  time.Duration
	State     string
	Attempts  int
	Success   bool
	ErrorKind string
	Error     string

	TraceID string
	SpanID  string
}

// NewCommandRecord starts timing a dispatch of command.
func NewCommandRecord(command, service string) *CommandRecord {
	return &CommandRecord{
		Command:   command,
		Service:   service,
		StartTime: time.Now(),
	}
}

// WithResource sets the id of the document the command operates on.
func (r *CommandRecord) WithResource(id string) *CommandRecord {
	r.ResourceID = id
	return r
}

// WithSpanContext copies trace and span ids from the current span.
func (r *CommandRecord) WithSpanContext(ctx context.Context) *CommandRecord {
	r.TraceID = GetTraceID(ctx)
	r.SpanID = GetSpanID(ctx)
	return r
}

// Complete stamps the final state. kind and err are empty on success.
func (r *CommandRecord) Complete(state string, attempts int, kind string, err error) *CommandRecord {
	r.Duration = time.Since(r.StartTime)
	r.State = state
	r.Attempts = attempts
	r.Success = err == nil && kind == ""
	r.ErrorKind = kind
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Status returns "success" or "error".
func (r *CommandRecord) Status() string {
	if r.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the structured fields of the record. Resource ids are
// only included when includeResource is set.
func (r *CommandRecord) LogAttrs(includeResource bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("command", r.Command),
		slog.Duration("duration", r.Duration),
		slog.Bool("success", r.Success),
	}
	if r.Service != "" {
		attrs = append(attrs, slog.String("service", r.Service))
	}
	if r.State != "" {
		attrs = append(attrs, slog.String("state", r.State))
	}
	if r.Attempts > 0 {
		attrs = append(attrs, slog.Int("attempts", r.Attempts))
	}
	if includeResource && r.ResourceID != "" {
		attrs = append(attrs, slog.String("resource_id", r.ResourceID))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", r.SpanID))
	}
	if r.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", r.ErrorKind))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}
	return attrs
}

// AuditLogger writes one structured line per dispatched command.
// A nil *AuditLogger logs nothing.
type AuditLogger struct {
	logger          *slog.Logger
	includeResource bool
	enabled         bool
}

// NewAuditLogger creates an enabled AuditLogger without resource ids.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates an AuditLogger from config.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:          logger,
		includeResource: config.IncludeResourceIDs,
		enabled:         config.Enabled,
	}
}

// LogCommand logs r at info level on success and warn level on failure.
func (al *AuditLogger) LogCommand(ctx context.Context, r *CommandRecord) {
	if al == nil || !al.enabled {
		return
	}

	level := slog.LevelInfo
	msg := "command_executed"
	if !r.Success {
		level = slog.LevelWarn
		msg = "command_failed"
	}
	al.logger.LogAttrs(ctx, level, msg, r.LogAttrs(al.includeResource)...)
}
