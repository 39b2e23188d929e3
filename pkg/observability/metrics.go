package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Domain instruments come from the global delegate and follow a later
// InitTelemetry call.
var (
	predictionCounter metric.Int64Counter
	conversionCounter metric.Int64Counter
)

func init() {
	meter := otel.Meter(tracerName)
	predictionCounter, _ = meter.Int64Counter(
		"iequus_body_score_predictions",
		metric.WithDescription("Body condition predictions by outcome"),
	)
	conversionCounter, _ = meter.Int64Counter(
		"iequus_cbc_conversions",
		metric.WithDescription("CBC document conversions to PDF by outcome"),
	)
}

// RecordPrediction counts one call to the prediction service.
// outcome is one of "scored", "partial", "failed".
func RecordPrediction(ctx context.Context, outcome string) {
	predictionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordConversion counts one CBC upload, keyed by source extension.
func RecordConversion(ctx context.Context, ext string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	conversionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extension", ext),
		attribute.String("outcome", outcome),
	))
}
