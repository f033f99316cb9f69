package metrics

import (
	"context"
	"time"
)

// NoOpMetrics satisfies every recorder interface and discards all samples.
type NoOpMetrics struct{}

var (
	_ OperationMetrics = (*NoOpMetrics)(nil)
	_ StatsMetrics     = (*NoOpMetrics)(nil)
	_ EventBusMetrics  = (*NoOpMetrics)(nil)
)

func NewNoop() *NoOpMetrics { return &NoOpMetrics{} }

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordEventApplied(context.Context, string)                             {}
func (*NoOpMetrics) RecordEventDropped(context.Context, string, string)                     {}
func (*NoOpMetrics) RecordEventDuplicate(context.Context, string)                           {}
func (*NoOpMetrics) RecordPublish(context.Context, string, time.Duration, error)            {}
func (*NoOpMetrics) RecordDelivery(context.Context, string, bool)                           {}
