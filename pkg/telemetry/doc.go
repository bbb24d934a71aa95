// Package telemetry provides tracing, counters and correlation IDs for the
// catalog's load and persist runs.
//
// Components depend on the Telemetry interface and default to NoOpTelemetry.
// OTEL is the OpenTelemetry-backed implementation:
//
//	tel, err := telemetry.NewOTEL(ctx, "mymarket", cfg.Telemetry.Endpoint)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
// The endpoint selects the exporter:
//   - "": spans are recorded but not exported
//   - "stdout": spans are pretty-printed to stdout
//   - "host:port": spans are sent to an OTLP gRPC collector
//
// Each load or persist run gets a correlation ID (a UUID) through
// WithCorrelationID. OTEL copies it onto every span it starts and
// EnrichLogFields copies it, and the active trace and span IDs, into log
// fields so log lines and spans can be joined.
package telemetry
