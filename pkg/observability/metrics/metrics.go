// Package metrics defines the metric recorders used by services, the event
// bus and the job queue, with prometheus and no-op implementations.
package metrics

import (
	"context"
	"time"
)

// OperationMetrics records the lifecycle of a service operation.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// StatsMetrics adds match event accounting to OperationMetrics.
type StatsMetrics interface {
	OperationMetrics
	RecordEventApplied(ctx context.Context, kind string)
	RecordEventDropped(ctx context.Context, kind, reason string)
	RecordEventDuplicate(ctx context.Context, kind string)
}

// EventBusMetrics records publish and delivery counts per topic.
type EventBusMetrics interface {
	RecordPublish(ctx context.Context, topic string, duration time.Duration, err error)
	RecordDelivery(ctx context.Context, topic string, acked bool)
}
