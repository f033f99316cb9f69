package statsrouter

import (
	"context"
	"io"
	"log/slog"
	"testing"

	statshandlers "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/handlers"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type stubBus struct{}

func (stubBus) Publish(string, ...*message.Message) error { return nil }
func (stubBus) Subscribe(ctx context.Context, _ string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
func (stubBus) CreateStream(context.Context, string) error { return nil }
func (stubBus) Close() error                               { return nil }

var _ eventbus.EventBus = stubBus{}

func TestConfigureRegistersMatchEventHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	r := NewStatsRouter(logger, router, stubBus{}, stubBus{}, nil, tracer)
	require.NoError(t, r.Configure(context.Background(), statshandlers.NewStatsHandlers(nil, logger, tracer)))

	handlers := router.Handlers()
	assert.Len(t, handlers, 1)
	assert.Contains(t, handlers, "stats.match.event.v1")
}
