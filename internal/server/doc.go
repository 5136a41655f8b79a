// Package server holds the process-wide state behind the MCP server and the
// CLI, plus the HTTP surfaces that expose it.
//
// # Key Components
//
// ServerContext builds and owns the credential store, the Google API client
// facade, the command registry and the dispatcher. It also tracks the current
// spreadsheet, which spreadsheet commands fall back to when no
// spreadsheet_id is given.
//
// HTTPServer mounts an MCP server on the streamable HTTP transport at /mcp,
// traced with otelhttp and counted in the HTTP request metrics.
//
// MetricsServer exposes the Prometheus registry of an instrumentation
// provider on its own port, together with the health endpoints.
//
// HealthChecker serves Kubernetes-style probes:
//   - /healthz: liveness
//   - /readyz: readiness, failing during shutdown or with no commands registered
//   - /healthz/detailed: uptime, command count and current spreadsheet
package server
