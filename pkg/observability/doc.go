/*
Package observability provides Prometheus instrumentation for the report navigator.

Metrics are fed by the engine's lifecycle hooks: screen visits and transitions,
advance outcomes and their latency, and content render failures.
*/
package observability
