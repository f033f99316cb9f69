// Package eventbus publishes and consumes watermill messages over NATS
// JetStream.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultAckWait    = 30 * time.Second
	defaultMaxDeliver = 10
	defaultNakDelay   = time.Second
)

// EventBus is a watermill publisher and subscriber backed by JetStream.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// CreateStream ensures a stream named streamName capturing
	// "<streamName>.>" exists.
	CreateStream(ctx context.Context, streamName string) error
}

type options struct {
	nkeySeed   string
	ackWait    time.Duration
	maxDeliver int
	nakDelay   time.Duration
}

// Option customises NewEventBus.
type Option func(*options)

// WithNKeySeed authenticates the NATS connections with an NKey seed.
func WithNKeySeed(seed string) Option {
	return func(o *options) { o.nkeySeed = seed }
}

// WithMaxDeliver bounds redeliveries of a nacked message.
func WithMaxDeliver(n int) Option {
	return func(o *options) { o.maxDeliver = n }
}

type eventBus struct {
	appType   string
	publisher message.Publisher
	conn      *nc.Conn
	js        jetstream.JetStream
	logger    *slog.Logger
	metrics   metrics.EventBusMetrics
	tracer    trace.Tracer
	opts      options

	marshaler *wmnats.NATSMarshaler

	mu      sync.Mutex
	subs    []*subscription
	streams map[string]bool
	closed  bool
}

var _ EventBus = (*eventBus)(nil)

// NewEventBus connects to natsURL. appType prefixes durable consumer names so
// every replica of a service shares one consumer per topic.
func NewEventBus(
	ctx context.Context,
	natsURL string,
	logger *slog.Logger,
	appType string,
	busMetrics metrics.EventBusMetrics,
	tracer trace.Tracer,
	opts ...Option,
) (EventBus, error) {
	o := options{ackWait: defaultAckWait, maxDeliver: defaultMaxDeliver, nakDelay: defaultNakDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if busMetrics == nil {
		busMetrics = metrics.NewNoop()
	}

	natsOptions := []nc.Option{
		nc.Name(appType),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}
	if o.nkeySeed != "" {
		authOpt, err := nkeyOption(o.nkeySeed)
		if err != nil {
			return nil, err
		}
		natsOptions = append(natsOptions, authOpt)
	}

	conn, err := nc.Connect(natsURL, natsOptions...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	marshaler := &wmnats.NATSMarshaler{}
	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: natsOptions,
			Marshaler:   marshaler,
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		conn.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	return &eventBus{
		appType:   appType,
		publisher: publisher,
		conn:      conn,
		js:        js,
		logger:    logger,
		metrics:   busMetrics,
		tracer:    tracer,
		opts:      o,
		marshaler: marshaler,
		streams:   make(map[string]bool),
	}, nil
}

func nkeyOption(seed string) (nc.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return nc.Nkey(pub, kp.Sign), nil
}

// Publish sends messages to topic. A message whose metadata names its own
// topic is routed there instead, which lets router handlers fan out to
// several topics.
func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		target := msg.Metadata.Get(handlerwrapper.MetadataTopic)
		if target == "" {
			target = topic
		}
		if target == "" {
			return errors.New("message has no topic")
		}
		msg.Metadata.Set(handlerwrapper.MetadataTopic, target)

		ctx := msg.Context()
		_, span := eb.tracer.Start(ctx, "eventbus.Publish", trace.WithAttributes(
			attribute.String("messaging.destination", target),
			attribute.String("message.uuid", msg.UUID),
		))
		start := time.Now()
		err := eb.publisher.Publish(target, msg)
		eb.metrics.RecordPublish(ctx, target, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.End()
			eb.logger.ErrorContext(ctx, "Failed to publish message",
				attr.String("topic", target),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
		span.End()
	}
	return nil
}

// Subscribe binds a durable pull consumer to topic. Messages are delivered
// one at a time and acknowledged once the watermill message is acked.
func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	streamName, err := eb.js.StreamNameBySubject(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("no stream captures %s: %w", topic, err)
	}

	consumer, err := eb.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:       DurableName(eb.appType, topic),
		FilterSubject: topic,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckWait:       eb.opts.ackWait,
		MaxDeliver:    eb.opts.maxDeliver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer for %s: %w", topic, err)
	}

	sub := &subscription{
		topic:   topic,
		out:     make(chan *message.Message),
		closing: make(chan struct{}),
	}

	cc, err := consumer.Consume(func(jm jetstream.Msg) {
		eb.deliver(ctx, sub, jm)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", topic, err)
	}
	sub.consume = cc

	eb.mu.Lock()
	eb.subs = append(eb.subs, sub)
	eb.mu.Unlock()

	go func() {
		<-ctx.Done()
		sub.stop()
	}()

	eb.logger.InfoContext(ctx, "Subscription started",
		attr.String("topic", topic),
		attr.String("stream", streamName),
	)
	return sub.out, nil
}

func (eb *eventBus) deliver(ctx context.Context, sub *subscription, jm jetstream.Msg) {
	if !sub.begin() {
		_ = jm.Nak()
		return
	}
	defer sub.wg.Done()

	msg, err := eb.marshaler.Unmarshal(&nc.Msg{
		Subject: jm.Subject(),
		Data:    jm.Data(),
		Header:  jm.Headers(),
	})
	if err != nil {
		eb.logger.WarnContext(ctx, "Terminating message that is not a watermill envelope",
			attr.String("topic", sub.topic),
			attr.Error(err),
		)
		_ = jm.Term()
		return
	}
	if msg.Metadata.Get(handlerwrapper.MetadataTopic) == "" {
		msg.Metadata.Set(handlerwrapper.MetadataTopic, jm.Subject())
	}

	msgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	msg.SetContext(msgCtx)

	select {
	case sub.out <- msg:
	case <-sub.closing:
		_ = jm.Nak()
		return
	}

	select {
	case <-msg.Acked():
		eb.metrics.RecordDelivery(ctx, sub.topic, true)
		if err := jm.Ack(); err != nil {
			eb.logger.WarnContext(ctx, "Failed to ack message", attr.String("topic", sub.topic), attr.Error(err))
		}
	case <-msg.Nacked():
		eb.metrics.RecordDelivery(ctx, sub.topic, false)
		_ = jm.NakWithDelay(eb.opts.nakDelay)
	case <-sub.closing:
		_ = jm.Nak()
	}
}

// CreateStream creates the stream if this process has not seen it yet.
func (eb *eventBus) CreateStream(ctx context.Context, streamName string) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.streams[streamName] {
		return nil
	}

	_, err := eb.js.Stream(ctx, streamName)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		_, err = eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      streamName,
			Subjects:  []string{streamName + ".>"},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}
		eb.logger.InfoContext(ctx, "Stream created", attr.String("stream", streamName))
	case err != nil:
		return fmt.Errorf("failed to look up stream %s: %w", streamName, err)
	}

	eb.streams[streamName] = true
	return nil
}

// Close stops every subscription and closes the NATS connection.
func (eb *eventBus) Close() error {
	eb.mu.Lock()
	if eb.closed {
		eb.mu.Unlock()
		return nil
	}
	eb.closed = true
	subs := eb.subs
	eb.subs = nil
	eb.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}

	var errs []error
	if err := eb.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	eb.conn.Close()
	return errors.Join(errs...)
}

// DurableName derives a JetStream durable consumer name from a topic.
func DurableName(appType, topic string) string {
	r := strings.NewReplacer(".", "_", "*", "any", ">", "all", " ", "_")
	return r.Replace(appType + "-" + topic)
}

type subscription struct {
	topic   string
	out     chan *message.Message
	closing chan struct{}
	consume jetstream.ConsumeContext

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// begin registers an in-flight delivery unless the subscription is closing.
func (s *subscription) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *subscription) stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.closing)
	s.mu.Unlock()

	if s.consume != nil {
		s.consume.Stop()
	}
	s.wg.Wait()
	close(s.out)
}
