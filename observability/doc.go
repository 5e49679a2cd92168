// Package observability provides OpenTelemetry wiring for livefeed:
// OTLP meter/tracer initialization and the metric instruments the
// feed client records.
//
// Initialization is optional. Without it, instruments bind to the
// global no-op providers and recording is free.
package observability
