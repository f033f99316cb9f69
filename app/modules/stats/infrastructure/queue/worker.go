package statsqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// Replayer re-applies a match event and returns the messages to publish.
type Replayer interface {
	ReplayMatchEvent(ctx context.Context, eventID string, payload matchevents.MatchEventPayloadV1) ([]handlerwrapper.Result, error)
}

// ReplayWorker runs ReplayMatchEventJob.
type ReplayWorker struct {
	river.WorkerDefaults[ReplayMatchEventJob]

	replayer  Replayer
	publisher message.Publisher
	logger    *slog.Logger
	delay     time.Duration
}

func NewReplayWorker(logger *slog.Logger, replayer Replayer, publisher message.Publisher, delay time.Duration) *ReplayWorker {
	return &ReplayWorker{
		replayer:  replayer,
		publisher: publisher,
		logger:    logger,
		delay:     delay,
	}
}

// NextRetry spaces attempts linearly by the configured delay.
func (w *ReplayWorker) NextRetry(job *river.Job[ReplayMatchEventJob]) time.Time {
	return time.Now().Add(time.Duration(job.Attempt) * w.delay)
}

func (w *ReplayWorker) Work(ctx context.Context, job *river.Job[ReplayMatchEventJob]) error {
	ctx = attr.WithCorrelationID(ctx, job.Args.EventID)
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.String("event_id", job.Args.EventID),
		attr.Int("attempt", job.Attempt),
	)

	results, err := w.replayer.ReplayMatchEvent(ctx, job.Args.EventID, job.Args.Payload)
	switch {
	case errors.Is(err, statsdomain.ErrMalformedEvent):
		logger.WarnContext(ctx, "Discarding malformed replay", attr.Error(err))
		return river.JobCancel(err)
	case errors.Is(err, statsdomain.ErrUpstreamLookupFailed):
		if job.Attempt >= job.MaxAttempts {
			logger.WarnContext(ctx, "Replay attempts exhausted, event discarded", attr.Error(err))
		} else {
			logger.InfoContext(ctx, "Replay lookup still failing", attr.Error(err))
		}
		return err
	case err != nil:
		return err
	}

	for _, r := range results {
		msg, err := handlerwrapper.NewMessage(ctx, r)
		if err != nil {
			return err
		}
		if err := w.publisher.Publish(r.Topic, msg); err != nil {
			return fmt.Errorf("failed to publish %s: %w", r.Topic, err)
		}
	}
	logger.InfoContext(ctx, "Replay completed", attr.Int("published", len(results)))
	return nil
}
