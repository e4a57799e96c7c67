package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceCatalogCall creates a client span for an outbound movie catalog
// request. Endpoint names follow the metric labels (search, movie_detail,
// discover, ...).
func TraceCatalogCall(ctx context.Context, endpoint string) (context.Context, trace.Span) {
	return otel.Tracer("catalog").Start(ctx, "catalog."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("catalog.endpoint", endpoint),
		),
	)
}

// TraceRecommendation creates a span covering one recommendation run
func TraceRecommendation(ctx context.Context, userID string) (context.Context, trace.Span) {
	return otel.Tracer("recommend").Start(ctx, "recommend.generate",
		trace.WithAttributes(
			attribute.String("user.id", userID),
		),
	)
}

// EndSpan records err (if any) and ends the span
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
