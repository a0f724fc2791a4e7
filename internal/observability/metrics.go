package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "community-events-service"

var (
	metricsOnce sync.Once

	repositoryOps  metric.Int64Counter
	lifecycleOps   metric.Int64Counter
	enrollmentOps  metric.Int64Counter
	mailerDelivery metric.Int64Counter
)

func initMetrics() {
	meter := otel.Meter(meterName)
	repositoryOps, _ = meter.Int64Counter("repository_operations_total",
		metric.WithDescription("Repository operations by entity, operation and outcome"))
	lifecycleOps, _ = meter.Int64Counter("account_lifecycle_events_total",
		metric.WithDescription("Account registration and verification events"))
	enrollmentOps, _ = meter.Int64Counter("enrollment_events_total",
		metric.WithDescription("Enrollment state transitions by operation and outcome"))
	mailerDelivery, _ = meter.Int64Counter("mailer_deliveries_total",
		metric.WithDescription("Outbound email delivery attempts by outcome"))
}

// RecordRepositoryOperation counts one storage-layer operation.
func RecordRepositoryOperation(ctx context.Context, entity, op, outcome string) {
	metricsOnce.Do(initMetrics)
	repositoryOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// RecordAccountLifecycleEvent counts register/verify/resend outcomes.
func RecordAccountLifecycleEvent(ctx context.Context, op, outcome string) {
	metricsOnce.Do(initMetrics)
	lifecycleOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// RecordEnrollmentEvent counts enrollment transitions.
func RecordEnrollmentEvent(ctx context.Context, op, outcome string) {
	metricsOnce.Do(initMetrics)
	enrollmentOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// RecordMailerEvent counts one delivery attempt.
func RecordMailerEvent(ctx context.Context, outcome string) {
	metricsOnce.Do(initMetrics)
	mailerDelivery.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
