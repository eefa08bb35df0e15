package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrPhase     = "phase"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrType      = "type"
	attrAction    = "action"
	attrSender    = "sender_domain"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Pipeline metrics
	emailsProcessedTotal metric.Int64Counter
	phaseDuration        metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// Attachment extraction metrics
	extractionsTotal metric.Int64Counter

	// Action and reply metrics
	actionsTotal metric.Int64Counter
	repliesTotal metric.Int64Counter

	// LLM metrics
	llmRequestsTotal   metric.Int64Counter
	llmRequestDuration metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.emailsProcessedTotal, err = meter.Int64Counter(
		"emails_processed_total",
		metric.WithDescription("Total number of emails processed by the pipeline"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create emails_processed_total counter: %w", err)
	}

	m.phaseDuration, err = meter.Float64Histogram(
		"pipeline_phase_duration_seconds",
		metric.WithDescription("Pipeline phase duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_phase_duration_seconds histogram: %w", err)
	}

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	m.extractionsTotal, err = meter.Int64Counter(
		"attachment_extractions_total",
		metric.WithDescription("Total number of attachment text extractions"),
		metric.WithUnit("{extraction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment_extractions_total counter: %w", err)
	}

	m.actionsTotal, err = meter.Int64Counter(
		"actions_executed_total",
		metric.WithDescription("Total number of classified actions executed"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create actions_executed_total counter: %w", err)
	}

	m.repliesTotal, err = meter.Int64Counter(
		"replies_sent_total",
		metric.WithDescription("Total number of reply delivery attempts"),
		metric.WithUnit("{reply}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create replies_sent_total counter: %w", err)
	}

	m.llmRequestsTotal, err = meter.Int64Counter(
		"llm_requests_total",
		metric.WithDescription("Total number of LLM completion requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_requests_total counter: %w", err)
	}

	m.llmRequestDuration, err = meter.Float64Histogram(
		"llm_request_duration_seconds",
		metric.WithDescription("LLM completion request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_request_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordEmailProcessed records one email passing through the pipeline with
// its final status.
func (m *Metrics) RecordEmailProcessed(ctx context.Context, status, senderEmail string) {
	if m.emailsProcessedTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && senderEmail != "" {
		attrs = append(attrs, attribute.String(attrSender, ExtractUserDomain(senderEmail)))
	}

	m.emailsProcessedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPhase records the duration and status of one pipeline phase run.
func (m *Metrics) RecordPhase(ctx context.Context, phase, status string, duration time.Duration) {
	if m.phaseDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrPhase, phase),
		attribute.String(attrStatus, status),
	}

	m.phaseDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API operation with service,
// operation, status, and duration.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordExtraction records an attachment extraction attempt by content type.
func (m *Metrics) RecordExtraction(ctx context.Context, contentType, status string) {
	if m.extractionsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrType, contentType),
		attribute.String(attrStatus, status),
	}

	m.extractionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAction records the execution of a classified action.
func (m *Metrics) RecordAction(ctx context.Context, actionType, status string) {
	if m.actionsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrAction, actionType),
		attribute.String(attrStatus, status),
	}

	m.actionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReply records a reply delivery attempt.
func (m *Metrics) RecordReply(ctx context.Context, status string) {
	if m.repliesTotal == nil {
		return // Instrumentation not initialized
	}

	m.repliesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}

// RecordLLMRequest records an LLM completion request with duration.
func (m *Metrics) RecordLLMRequest(ctx context.Context, status string, duration time.Duration) {
	if m.llmRequestsTotal == nil || m.llmRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.llmRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.llmRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
