package statshandlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	statsevents "github.com/Black-And-White-Club/competition-engine/app/events/stats"
	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestHandlers(svc *FakeStatsService) *StatsHandlers {
	return NewStatsHandlers(
		svc,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestToMatchEvent(t *testing.T) {
	competitionID, matchID, team, opponent := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	player := &matchevents.PlayerV1{ID: uuid.New(), Name: "Nine"}
	assist := &matchevents.PlayerV1{ID: uuid.New(), Name: "Ten"}
	header := statsdomain.EventHeader{CompetitionID: competitionID, MatchID: matchID, Minute: 55}

	tests := []struct {
		name    string
		payload matchevents.MatchEventPayloadV1
		want    statsdomain.MatchEvent
		wantErr error
	}{
		{
			name: "status",
			payload: matchevents.MatchEventPayloadV1{
				Type: matchevents.TypeStatus, Status: "FINISHED", Result: "DRAW",
				HomeTeamID: ptr(team), HomeGoals: 2, AwayGoals: 2,
			},
			want: statsdomain.StatusEvent{
				EventHeader: header, Status: statsdomain.StatusFinished, Result: statsdomain.ResultDraw,
				HomeTeamID: team, HomeGoals: 2, AwayGoals: 2,
			},
		},
		{
			name:    "goal with assist",
			payload: matchevents.MatchEventPayloadV1{Type: matchevents.TypeGoal, TeamID: ptr(team), Player: player, Assist: assist},
			want: statsdomain.GoalEvent{
				EventHeader: header, TeamID: team,
				Scorer: statsdomain.PlayerRef{ID: player.ID, Name: "Nine"},
				Assist: &statsdomain.PlayerRef{ID: assist.ID, Name: "Ten"},
			},
		},
		{
			name:    "own goal with the assisting team",
			payload: matchevents.MatchEventPayloadV1{Type: matchevents.TypeGoal, TeamID: ptr(team), Player: player, Assist: assist, AssistTeamID: ptr(opponent), OwnGoal: true},
			want: statsdomain.GoalEvent{
				EventHeader: header, TeamID: team, OwnGoal: true,
				Scorer:       statsdomain.PlayerRef{ID: player.ID, Name: "Nine"},
				Assist:       &statsdomain.PlayerRef{ID: assist.ID, Name: "Ten"},
				AssistTeamID: opponent,
			},
		},
		{
			name:    "penalty flags",
			payload: matchevents.MatchEventPayloadV1{Type: matchevents.TypePenalty, TeamID: ptr(team), Player: player, Scored: true, Shootout: true},
			want: statsdomain.PenaltyEvent{
				EventHeader: header, TeamID: team,
				Taker:  statsdomain.PlayerRef{ID: player.ID, Name: "Nine"},
				Scored: true, Shootout: true,
			},
		},
		{
			name:    "card without player",
			payload: matchevents.MatchEventPayloadV1{Type: matchevents.TypeCard, CardType: "YELLOW"},
			want:    statsdomain.CardEvent{EventHeader: header, Card: statsdomain.CardYellow},
		},
		{
			name:    "unknown type",
			payload: matchevents.MatchEventPayloadV1{Type: "VAR_REVIEW"},
			wantErr: statsdomain.ErrMalformedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.payload
			p.CompetitionID, p.MatchID, p.Minute = competitionID, matchID, 55

			got, err := toMatchEvent(&p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleMatchEvent(t *testing.T) {
	competitionID := uuid.New()
	applied := &statsservice.ApplyResult{
		Outcome: statsservice.OutcomeApplied,
		Teams:   []statsdomain.TeamStats{{CompetitionID: competitionID, TeamID: uuid.New(), Points: 3}},
	}

	tests := []struct {
		name        string
		applyErr    error
		applyResult *statsservice.ApplyResult
		wantTopics  []string
		wantErr     bool
		wantReplays int
	}{
		{
			name:        "applied event publishes updates",
			applyResult: applied,
			wantTopics: []string{
				statsevents.StatsUpdatedV1,
				fmt.Sprintf("%s.%s", statsevents.StatsUpdatedV1, competitionID),
			},
		},
		{
			name:        "ignored event publishes nothing",
			applyResult: &statsservice.ApplyResult{Outcome: statsservice.OutcomeIgnored, Reason: "commentary"},
		},
		{
			name:        "duplicate publishes nothing",
			applyResult: &statsservice.ApplyResult{Outcome: statsservice.OutcomeDuplicate},
		},
		{
			name:        "lookup failure is acked and replayed",
			applyErr:    fmt.Errorf("ApplyMatchEvent: %w", statsdomain.ErrUpstreamLookupFailed),
			wantReplays: 1,
		},
		{
			name:     "malformed event is acked",
			applyErr: fmt.Errorf("ApplyMatchEvent: %w", statsdomain.ErrMalformedEvent),
		},
		{
			name:     "infrastructure error is returned",
			applyErr: errors.New("connection refused"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeStatsService()
			var gotEventID string
			svc.ApplyMatchEventFunc = func(_ context.Context, eventID string, _ statsdomain.MatchEvent) (*statsservice.ApplyResult, error) {
				gotEventID = eventID
				return tt.applyResult, tt.applyErr
			}
			replay := &FakeReplayScheduler{}
			h := newTestHandlers(svc)
			h.SetReplayScheduler(replay)

			out, err := h.HandleMatchEvent(context.Background(), &matchevents.MatchEventPayloadV1{
				EventID:       "evt-42",
				Type:          matchevents.TypeCommentary,
				CompetitionID: competitionID,
				MatchID:       uuid.New(),
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "evt-42", gotEventID)

			var topics []string
			for _, r := range out {
				topics = append(topics, r.Topic)
			}
			assert.Equal(t, tt.wantTopics, topics)
			assert.Len(t, replay.EventIDs, tt.wantReplays)
		})
	}
}

func TestHandleMatchEvent_FallsBackToMessageID(t *testing.T) {
	svc := NewFakeStatsService()
	var gotEventID string
	svc.ApplyMatchEventFunc = func(_ context.Context, eventID string, _ statsdomain.MatchEvent) (*statsservice.ApplyResult, error) {
		gotEventID = eventID
		return &statsservice.ApplyResult{Outcome: statsservice.OutcomeIgnored}, nil
	}
	h := newTestHandlers(svc)

	ctx := context.WithValue(context.Background(), handlerwrapper.CtxKeyMessageID, "msg-7")
	_, err := h.HandleMatchEvent(ctx, &matchevents.MatchEventPayloadV1{Type: matchevents.TypeCommentary, CompetitionID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "msg-7", gotEventID)
}

func TestHandleMatchEvent_UnknownTypeIsDropped(t *testing.T) {
	svc := NewFakeStatsService()
	h := newTestHandlers(svc)

	out, err := h.HandleMatchEvent(context.Background(), &matchevents.MatchEventPayloadV1{Type: "OFFSIDE", CompetitionID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, svc.Trace())
}

func TestReplayMatchEvent(t *testing.T) {
	competitionID := uuid.New()

	t.Run("still failing lookup is returned", func(t *testing.T) {
		svc := NewFakeStatsService()
		svc.ApplyMatchEventFunc = func(context.Context, string, statsdomain.MatchEvent) (*statsservice.ApplyResult, error) {
			return nil, statsdomain.ErrUpstreamLookupFailed
		}
		h := newTestHandlers(svc)

		_, err := h.ReplayMatchEvent(context.Background(), "evt", matchevents.MatchEventPayloadV1{Type: matchevents.TypeCard, CompetitionID: competitionID})
		assert.ErrorIs(t, err, statsdomain.ErrUpstreamLookupFailed)
	})

	t.Run("applied replay announces rows", func(t *testing.T) {
		svc := NewFakeStatsService()
		svc.ApplyMatchEventFunc = func(context.Context, string, statsdomain.MatchEvent) (*statsservice.ApplyResult, error) {
			return &statsservice.ApplyResult{Outcome: statsservice.OutcomeApplied}, nil
		}
		h := newTestHandlers(svc)

		out, err := h.ReplayMatchEvent(context.Background(), "evt", matchevents.MatchEventPayloadV1{Type: matchevents.TypeCard, CompetitionID: competitionID})
		require.NoError(t, err)
		require.Len(t, out, 2)
		payload, ok := out[0].Payload.(*statsevents.StatsUpdatedPayloadV1)
		require.True(t, ok)
		assert.Equal(t, "evt", payload.EventID)
		assert.Equal(t, "CARD", payload.Kind)
	})
}
