// Package instrumentation provides OpenTelemetry instrumentation for the
// mailtriage pipeline.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for pipeline phases, Google API calls, attachment
//     extraction, actions, replies, and LLM requests
//   - Distributed tracing for pipeline runs and external API calls
//   - Prometheus metrics export
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Pipeline Metrics:
//   - emails_processed_total: Counter of processed emails by status
//   - pipeline_phase_duration_seconds: Histogram of phase durations by phase and status
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// Extraction and Action Metrics:
//   - attachment_extractions_total: Counter of extractions by content type and status
//   - actions_executed_total: Counter of executed actions by action type and status
//   - replies_sent_total: Counter of reply delivery attempts by status
//
// LLM Metrics:
//   - llm_requests_total: Counter of LLM completion requests by status
//   - llm_request_duration_seconds: Histogram of LLM request durations
//
// # Tracing
//
// Spans are created for:
//   - Pipeline phases (pipeline.<phase>)
//   - Google API calls (google.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mailtriage)
package instrumentation
