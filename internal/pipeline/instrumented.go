package pipeline

import (
	"context"

	"github.com/wassersoft/mailtriage/internal/instrumentation"
)

// googleCall wraps one Google API operation with a client span and the
// per-operation metrics.
func (p *Pipeline) googleCall(ctx context.Context, service, operation string, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation)
	defer span.End()

	start := p.now()
	err := fn(ctx)
	duration := p.now().Sub(start)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		p.metrics.RecordGoogleAPIOperation(ctx, service, operation, instrumentation.StatusError, duration)
		return err
	}
	instrumentation.SetSpanSuccess(span)
	p.metrics.RecordGoogleAPIOperation(ctx, service, operation, instrumentation.StatusSuccess, duration)
	return nil
}
