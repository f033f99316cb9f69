package competitionhandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	competitionevents "github.com/Black-And-White-Club/competition-engine/app/events/competition"
	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	competitionws "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/websocket"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestHandlers(svc *FakeCompetitionService, b Broadcaster) Handlers {
	return newPublishingHandlers(svc, b, nil)
}

func newPublishingHandlers(svc *FakeCompetitionService, b Broadcaster, pub *FakePublisher) Handlers {
	var publisher message.Publisher
	if pub != nil {
		publisher = pub
	}
	return NewCompetitionHandlers(
		svc,
		b,
		publisher,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestHandleBracketUpsertRequested(t *testing.T) {
	competitionID := uuid.New()
	valid := competitiondomain.BracketProposal{Stages: []competitiondomain.StageProposal{
		{Stage: "FINAL", Slots: []competitiondomain.SlotProposal{{Type: "TAKEN", FirstLeg: ptr(uuid.New())}}},
	}}
	twoSlotFinal := competitiondomain.BracketProposal{Stages: []competitiondomain.StageProposal{
		{Stage: "FINAL", Slots: []competitiondomain.SlotProposal{{Type: "EMPTY"}, {Type: "EMPTY"}}},
	}}

	tests := []struct {
		name           string
		setupService   func(*FakeCompetitionService)
		proposal       competitiondomain.BracketProposal
		wantTopics     []string
		wantReason     string
		wantBroadcasts []string
		wantErr        bool
	}{
		{
			name:         "valid bracket is announced",
			setupService: func(*FakeCompetitionService) {},
			proposal:     valid,
			wantTopics: []string{
				competitionevents.BracketUpdatedV1,
				competitionevents.BracketUpdatedV1 + "." + competitionID.String(),
			},
			wantBroadcasts: []string{competitionws.MessageBracketUpdated},
		},
		{
			name:         "invalid bracket is rejected with violations",
			setupService: func(*FakeCompetitionService) {},
			proposal:     twoSlotFinal,
			wantTopics: []string{
				competitionevents.BracketRejectedV1,
				competitionevents.BracketRejectedV1 + "." + competitionID.String(),
			},
			wantReason:     competitionevents.ReasonValidationFailed,
			wantBroadcasts: []string{},
		},
		{
			name: "league competition is rejected",
			setupService: func(f *FakeCompetitionService) {
				f.UpsertBracketFunc = func(context.Context, uuid.UUID, competitiondomain.BracketProposal) (*competitiondomain.Bracket, error) {
					return nil, competitiondomain.ErrPhaseNotFound
				}
			},
			proposal: valid,
			wantTopics: []string{
				competitionevents.BracketRejectedV1,
				competitionevents.BracketRejectedV1 + "." + competitionID.String(),
			},
			wantReason:     competitionevents.ReasonPhaseNotFound,
			wantBroadcasts: []string{},
		},
		{
			name: "infrastructure error is returned for redelivery",
			setupService: func(f *FakeCompetitionService) {
				f.UpsertBracketFunc = func(context.Context, uuid.UUID, competitiondomain.BracketProposal) (*competitiondomain.Bracket, error) {
					return nil, errors.New("connection refused")
				}
			},
			proposal: valid,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeCompetitionService()
			tt.setupService(svc)
			b := &FakeBroadcaster{}

			results, err := newTestHandlers(svc, b).HandleBracketUpsertRequested(context.Background(), &competitionevents.BracketUpsertRequestedPayloadV1{
				CompetitionID: competitionID,
				Bracket:       tt.proposal,
			})
			assert.Equal(t, []string{"UpsertBracket"}, svc.Trace())

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, results)
				return
			}
			require.NoError(t, err)

			topics := make([]string, 0, len(results))
			for _, r := range results {
				topics = append(topics, r.Topic)
			}
			assert.Equal(t, tt.wantTopics, topics)
			assert.Equal(t, tt.wantBroadcasts, b.Types())

			if tt.wantReason != "" {
				rejected, ok := results[0].Payload.(*competitionevents.BracketRejectedPayloadV1)
				require.True(t, ok)
				assert.Equal(t, tt.wantReason, rejected.Reason)
				if tt.wantReason == competitionevents.ReasonValidationFailed {
					assert.Equal(t, []string{"stage FINAL must contain exactly 1 slots"}, rejected.Violations["stages[0].slots"])
				}
			}
		})
	}
}

func TestHandleRoundAssignRequested(t *testing.T) {
	competitionID := uuid.New()
	matchIDs := []uuid.UUID{uuid.New(), uuid.New()}

	tests := []struct {
		name         string
		setupService func(*FakeCompetitionService)
		wantTopic    string
		wantReason   string
		wantErr      bool
	}{
		{
			name:         "assigned",
			setupService: func(*FakeCompetitionService) {},
			wantTopic:    competitionevents.RoundAssignedV1,
		},
		{
			name: "round not empty",
			setupService: func(f *FakeCompetitionService) {
				f.AssignRoundFunc = func(context.Context, uuid.UUID, int, []uuid.UUID) (*competitiondomain.Round, error) {
					return nil, competitiondomain.ErrRoundNotEmpty
				}
			},
			wantTopic:  competitionevents.RoundAssignFailedV1,
			wantReason: competitionevents.ReasonRoundNotEmpty,
		},
		{
			name: "round not found",
			setupService: func(f *FakeCompetitionService) {
				f.AssignRoundFunc = func(context.Context, uuid.UUID, int, []uuid.UUID) (*competitiondomain.Round, error) {
					return nil, competitiondomain.ErrRoundNotFound
				}
			},
			wantTopic:  competitionevents.RoundAssignFailedV1,
			wantReason: competitionevents.ReasonRoundNotFound,
		},
		{
			name: "database error",
			setupService: func(f *FakeCompetitionService) {
				f.AssignRoundFunc = func(context.Context, uuid.UUID, int, []uuid.UUID) (*competitiondomain.Round, error) {
					return nil, errors.New("deadlock")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeCompetitionService()
			tt.setupService(svc)

			results, err := newTestHandlers(svc, &FakeBroadcaster{}).HandleRoundAssignRequested(context.Background(), &competitionevents.RoundAssignRequestedPayloadV1{
				CompetitionID: competitionID,
				RoundNumber:   4,
				MatchIDs:      matchIDs,
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, tt.wantTopic, results[0].Topic)
			assert.Equal(t, tt.wantTopic+"."+competitionID.String(), results[1].Topic)

			switch p := results[0].Payload.(type) {
			case *competitionevents.RoundAssignedPayloadV1:
				assert.Equal(t, matchIDs, p.MatchIDs)
				assert.Equal(t, 4, p.RoundNumber)
			case *competitionevents.RoundAssignFailedPayloadV1:
				assert.Equal(t, tt.wantReason, p.Reason)
			default:
				t.Fatalf("unexpected payload %T", p)
			}
		})
	}
}

func TestHandleRoundUnassignRequested(t *testing.T) {
	competitionID := uuid.New()

	t.Run("cleared", func(t *testing.T) {
		b := &FakeBroadcaster{}
		results, err := newTestHandlers(NewFakeCompetitionService(), b).HandleRoundUnassignRequested(context.Background(), &competitionevents.RoundUnassignRequestedPayloadV1{
			CompetitionID: competitionID,
			RoundNumber:   2,
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, competitionevents.RoundUnassignedV1, results[0].Topic)
		assert.Equal(t, []string{competitionws.MessageRoundUnassigned}, b.Types())
	})

	t.Run("unknown round is acknowledged", func(t *testing.T) {
		svc := NewFakeCompetitionService()
		svc.UnassignRoundFunc = func(context.Context, uuid.UUID, int) (*competitiondomain.Round, error) {
			return nil, competitiondomain.ErrRoundNotFound
		}
		results, err := newTestHandlers(svc, nil).HandleRoundUnassignRequested(context.Background(), &competitionevents.RoundUnassignRequestedPayloadV1{
			CompetitionID: competitionID,
			RoundNumber:   99,
		})
		assert.NoError(t, err)
		assert.Empty(t, results)
	})
}
