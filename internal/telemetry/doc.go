// Package telemetry wires OpenTelemetry tracing and metrics for graphd.
//
// Telemetry is disabled by default; the global no-op providers are used and
// every otel.Tracer/otel.Meter call in the service stays cheap. When enabled,
// spans and metrics are exported over OTLP (gRPC or HTTP) to a collector.
//
//	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry, version), logger)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
// Provider failures never stop the service. The instance reports itself as
// degraded and the global providers stay no-op.
package telemetry
