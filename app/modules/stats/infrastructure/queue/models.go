package statsqueue

import matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"

const (
	// QueueReplay is the river queue holding match event replays.
	QueueReplay = "stats_replay"

	replayKind = "stats_replay_match_event"
)

// ReplayMatchEventJob re-applies a match event dropped for a failed lookup.
type ReplayMatchEventJob struct {
	EventID string                          `json:"event_id"`
	Payload matchevents.MatchEventPayloadV1 `json:"payload"`
}

// Kind returns the job type identifier for River
func (ReplayMatchEventJob) Kind() string { return replayKind }

// JobInfo describes a pending replay (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	EventID     string `json:"event_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
