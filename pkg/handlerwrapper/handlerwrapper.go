// Package handlerwrapper adapts typed domain handlers to watermill
// message.HandlerFunc values.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MetadataTopic names the metadata key the event bus reads to route a
// produced message. Handlers are registered with an empty publish topic.
const MetadataTopic = "topic"

type ctxKey string

const (
	// CtxKeyMessageID carries the transport id of the message being handled.
	CtxKeyMessageID ctxKey = "message_id"
	// CtxKeyTopic carries the topic the message was received on.
	CtxKeyTopic ctxKey = "topic"
)

// Result is one outbound message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// MessageIDFromContext returns the transport id of the message in ctx.
func MessageIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyMessageID).(string)
	return id
}

// WrapTransformingTyped decodes the JSON payload into T, invokes handler and
// turns its results into outbound messages. Payloads that cannot be decoded
// are logged and acknowledged so they never block the subscription.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	busMetrics metrics.EventBusMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = msg.UUID
		}
		ctx = attr.WithCorrelationID(ctx, correlationID)
		ctx = context.WithValue(ctx, CtxKeyMessageID, msg.UUID)
		topic := msg.Metadata.Get(MetadataTopic)
		if topic != "" {
			ctx = context.WithValue(ctx, CtxKeyTopic, topic)
		}

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("message.topic", topic),
		))
		defer span.End()

		start := time.Now()
		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.WarnContext(ctx, "Dropping message with undecodable payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.SetStatus(codes.Error, "undecodable payload")
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := newOutboundMessage(correlationID, r)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		logger.DebugContext(ctx, "Handler completed",
			attr.ExtractCorrelationID(ctx),
			attr.String("handler", handlerName),
			attr.Int("results", len(out)),
			attr.Duration("duration", time.Since(start)),
		)
		if busMetrics != nil {
			busMetrics.RecordDelivery(ctx, handlerName, true)
		}
		return out, nil
	}
}

// NewMessage builds an outbound message for r outside a router handler.
func NewMessage(ctx context.Context, r Result) (*message.Message, error) {
	return newOutboundMessage(attr.CorrelationIDFromContext(ctx), r)
}

func newOutboundMessage(correlationID string, r Result) (*message.Message, error) {
	if r.Topic == "" {
		return nil, fmt.Errorf("result has no topic")
	}
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}
	m := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(MetadataTopic, r.Topic)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, m)
	}
	return m, nil
}
