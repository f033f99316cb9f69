package statsqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"github.com/uptrace/bun"
)

const component = "river"

// QueueService schedules and runs match event replays.
type QueueService interface {
	// ScheduleReplay queues payload for a delayed re-attempt.
	ScheduleReplay(ctx context.Context, eventID string, payload matchevents.MatchEventPayloadV1) error
	// PendingReplays lists replays that have not run to completion.
	PendingReplays(ctx context.Context) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Options tune the replay schedule.
type Options struct {
	Delay       time.Duration
	MaxAttempts int
}

type jobInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// Service handles match event replays using River.
type Service struct {
	client   *river.Client[pgx.Tx]
	inserter jobInserter
	pool     *pgxpool.Pool
	logger   *slog.Logger
	db       *bun.DB
	metrics  metrics.OperationMetrics
	opts     Options
	now      func() time.Time
}

// NewService creates a River client over its own pgx pool and registers the
// replay worker.
func NewService(
	ctx context.Context,
	bunDB *bun.DB,
	logger *slog.Logger,
	dsn string,
	metrics metrics.OperationMetrics,
	replayer Replayer,
	publisher message.Publisher,
	opts Options,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_stats_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", component)

	ctxLogger.Info("Initializing stats replay queue")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReplayWorker(ctxLogger, replayer, publisher, opts.Delay))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			QueueReplay: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", component)
	metrics.RecordOperationDuration(ctx, "initialize_service", component, time.Since(start))

	ctxLogger.Info("Stats replay queue initialized")
	return &Service{
		client:   client,
		inserter: client,
		pool:     pool,
		logger:   ctxLogger,
		db:       bunDB,
		metrics:  metrics,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting stats replay queue")
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", component)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop waits for running jobs and releases the pgx pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping stats replay queue")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", component)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// ScheduleReplay queues a replay after the configured delay. Scheduling the
// same event twice keeps a single job.
func (s *Service) ScheduleReplay(ctx context.Context, eventID string, payload matchevents.MatchEventPayloadV1) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_replay", component)

	runAt := s.now().Add(s.opts.Delay)
	res, err := s.inserter.Insert(ctx, ReplayMatchEventJob{EventID: eventID, Payload: payload}, &river.InsertOpts{
		Queue:       QueueReplay,
		ScheduledAt: runAt,
		MaxAttempts: s.opts.MaxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "schedule_replay", component)
		return fmt.Errorf("failed to schedule replay: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_replay", component)
	s.metrics.RecordOperationDuration(ctx, "schedule_replay", component, time.Since(start))

	s.logger.InfoContext(ctx, "Match event replay scheduled",
		attr.ExtractCorrelationID(ctx),
		attr.String("event_id", eventID),
		attr.Time("run_at", runAt),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// PendingReplays lists replays that are waiting or retrying.
func (s *Service) PendingReplays(ctx context.Context) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64          `bun:"id"`
		State       string         `bun:"state"`
		Args        map[string]any `bun:"args"`
		ScheduledAt *time.Time     `bun:"scheduled_at"`
		Attempt     int16          `bun:"attempt"`
		MaxAttempts int16          `bun:"max_attempts"`
	}

	var rows []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "state", "args", "scheduled_at", "attempt", "max_attempts").
		Where("kind = ?", replayKind).
		Where("state IN (?)", bun.In([]string{"available", "scheduled", "retryable", "running"})).
		Order("scheduled_at ASC NULLS LAST").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending replays: %w", err)
	}

	out := make([]JobInfo, len(rows))
	for i, row := range rows {
		info := JobInfo{
			ID:          row.ID,
			State:       row.State,
			Attempt:     int(row.Attempt),
			MaxAttempts: int(row.MaxAttempts),
		}
		if id, ok := row.Args["event_id"].(string); ok {
			info.EventID = id
		}
		if row.ScheduledAt != nil {
			info.ScheduledAt = row.ScheduledAt.Format(time.RFC3339)
		}
		out[i] = info
	}
	return out, nil
}

// HealthCheck verifies the river tables are reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Where("kind = ?", replayKind).
		Scan(ctx, &count)
	if err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	s.logger.Debug("Queue service health check passed", attr.Int("replay_jobs", count))
	return nil
}
