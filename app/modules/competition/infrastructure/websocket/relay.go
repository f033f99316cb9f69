package competitionws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	competitionevents "github.com/Black-And-White-Club/competition-engine/app/events/competition"
	statsevents "github.com/Black-And-White-Club/competition-engine/app/events/stats"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RelayTopics maps the bus topics a relay consumes to the message type pushed
// to clients.
var RelayTopics = map[string]string{
	competitionevents.BracketUpdatedV1:  MessageBracketUpdated,
	competitionevents.RoundAssignedV1:   MessageRoundAssigned,
	competitionevents.RoundUnassignedV1: MessageRoundUnassigned,
	statsevents.StatsUpdatedV1:          MessageStatsUpdated,
}

type broadcaster interface {
	Broadcast(competitionID uuid.UUID, messageType string, payload any) int
}

// Relay forwards published competition and stats events to websocket rooms.
// It lets live updates be served by processes that do not run the modules.
type Relay struct {
	hub        broadcaster
	subscriber message.Subscriber
	logger     *slog.Logger
}

func NewRelay(hub broadcaster, subscriber message.Subscriber, logger *slog.Logger) *Relay {
	return &Relay{hub: hub, subscriber: subscriber, logger: logger}
}

// Run subscribes to every relay topic and blocks until ctx is done. If any
// subscription fails the ones already made are released and nothing is
// forwarded.
func (r *Relay) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	subscriptions := make(map[string]<-chan *message.Message, len(RelayTopics))
	for topic := range RelayTopics {
		messages, err := r.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		subscriptions[topic] = messages
	}

	g, ctx := errgroup.WithContext(ctx)
	for topic, messages := range subscriptions {
		messageType := RelayTopics[topic]
		g.Go(func() error {
			r.forward(ctx, topic, messageType, messages)
			return nil
		})
	}
	return g.Wait()
}

func (r *Relay) forward(ctx context.Context, topic, messageType string, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.relay(topic, messageType, msg)
			msg.Ack()
		}
	}
}

// relay never nacks: a payload that cannot be routed would fail the same way
// on redelivery.
func (r *Relay) relay(topic, messageType string, msg *message.Message) {
	var envelope struct {
		CompetitionID uuid.UUID `json:"competition_id"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil || envelope.CompetitionID == uuid.Nil {
		r.logger.Warn("Dropping unroutable live update",
			attr.String("topic", topic),
			attr.String("message_id", msg.UUID),
		)
		return
	}

	n := r.hub.Broadcast(envelope.CompetitionID, messageType, json.RawMessage(msg.Payload))
	r.logger.Debug("Relayed live update",
		attr.String("topic", topic),
		attr.CompetitionID(envelope.CompetitionID),
		attr.Int("clients", n),
	)
}
