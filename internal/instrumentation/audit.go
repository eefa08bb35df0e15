package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ProcessingEvent captures the outcome of processing one email for the audit
// trail.
//
// # Privacy Considerations
//
// The Sender field contains PII. When logging, consider:
//   - Using SenderDomain() to get only the domain for metrics/general logs
//   - Only logging the full address in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type ProcessingEvent struct {
	// Provider message identifier
	MessageID string

	// Sender address (PII)
	Sender string

	// ActionType is the classified follow-up, if any
	ActionType string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
}

// SenderDomain returns the domain portion of the sender address for
// lower-cardinality logging.
func (e *ProcessingEvent) SenderDomain() string {
	return ExtractUserDomain(e.Sender)
}

// Status returns "success" or "error" based on the Success field.
func (e *ProcessingEvent) Status() string {
	if e.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for the event. The sender appears only as
// its domain; use includePII for the full address in dedicated audit streams.
func (e *ProcessingEvent) LogAttrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("message_id", e.MessageID),
		slog.String("sender_domain", e.SenderDomain()),
		slog.Duration("duration", e.Duration),
		slog.Bool("success", e.Success),
	}
	if includePII {
		attrs = append(attrs, slog.String("sender", e.Sender))
	}
	if e.ActionType != "" {
		attrs = append(attrs, slog.String("action_type", e.ActionType))
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}
	return attrs
}

// Auditor writes the processing audit trail through slog.
type Auditor struct {
	logger *slog.Logger
	config AuditLoggingConfig
}

// NewAuditor creates an Auditor. A nil logger uses slog.Default().
func NewAuditor(logger *slog.Logger, config AuditLoggingConfig) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{logger: logger, config: config}
}

// RecordEmailProcessed writes one audit record. No-op when audit logging is
// disabled. Trace context from ctx is attached when present.
func (a *Auditor) RecordEmailProcessed(ctx context.Context, event ProcessingEvent) {
	if a == nil || !a.config.Enabled {
		return
	}

	attrs := event.LogAttrs(a.config.IncludePII)
	if traceID := GetTraceID(ctx); traceID != "" {
		attrs = append(attrs,
			slog.String("trace_id", traceID),
			slog.String("span_id", GetSpanID(ctx)),
		)
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "email processed", attrs...)
}
