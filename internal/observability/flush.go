package observability

import (
	"context"
	"errors"
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// FlushTelemetry exports buffered spans and syncs the logger. Call during graceful shutdown
// after in-flight requests have drained. Either argument may be nil.
func FlushTelemetry(ctx context.Context, tp *sdktrace.TracerProvider, logger *zap.Logger) error {
	var errs []error
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	if logger != nil {
		if err := logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("flush logs: %w", err))
		}
	}
	return errors.Join(errs...)
}
