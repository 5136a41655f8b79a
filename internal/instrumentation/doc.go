// Package instrumentation provides OpenTelemetry metrics, tracing and the
// per-command audit log.
//
// # Metrics
//
//   - command_invocations_total, command_duration_seconds: dispatched commands
//     by command, service and status
//   - command_retries_total: retried attempts by command
//   - google_api_operations_total, google_api_operation_duration_seconds:
//     individual vendor call attempts
//   - oauth_token_refresh_total: token refreshes by result
//   - http_requests_total, http_request_duration_seconds: streamable HTTP
//     transport requests
//
// # Tracing
//
// Each dispatch opens a command.<name> span; each attempt against a Google
// API opens a google.<service>.<command> child span.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-google-workspace)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_RESOURCE_IDS: audit log switches
package instrumentation
